package workclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyOf(t *testing.T) {
	assert.Equal(t, DefaultPolicy(), PolicyOf(nil))

	inactive := &WorkClass{ID: "wc-1", DailyWorkHours: 6, LunchHours: 0.5, IsActive: false}
	assert.Equal(t, DefaultPolicy(), PolicyOf(inactive))

	broken := &WorkClass{ID: "wc-2", DailyWorkHours: 0, IsActive: true}
	assert.Equal(t, DefaultPolicy(), PolicyOf(broken))

	active := &WorkClass{ID: "wc-3", DailyWorkHours: 6, LunchHours: 0.5, IsActive: true}
	p := PolicyOf(active)
	assert.Equal(t, 6.0, p.DailyWorkHours)
	assert.Equal(t, 0.5, p.LunchHours)
	if assert.NotNil(t, p.WorkClassID) {
		assert.Equal(t, "wc-3", *p.WorkClassID)
	}
}
