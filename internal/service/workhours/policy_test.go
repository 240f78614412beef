package workhours

import (
	"context"
	"testing"

	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
	"github.com/skponto/skponto-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPolicyResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddWorkClass(workclass.WorkClass{ID: "part-time", Name: "Part time", DailyWorkHours: 6, LunchHours: 0.5, IsActive: true})
	store.AddWorkClass(workclass.WorkClass{ID: "retired", Name: "Retired", DailyWorkHours: 4, LunchHours: 0, IsActive: false})
	store.AddUser(user.User{ID: "u-part", Role: user.RoleWorker, WorkClassID: strPtr("part-time"), IsActive: true})
	store.AddUser(user.User{ID: "u-retired", Role: user.RoleWorker, WorkClassID: strPtr("retired"), IsActive: true})
	store.AddUser(user.User{ID: "u-dangling", Role: user.RoleWorker, WorkClassID: strPtr("deleted"), IsActive: true})
	store.AddUser(user.User{ID: "u-none", Role: user.RoleIntern, IsActive: true})

	resolver := NewPolicyResolver(memory.NewUserRepository(store), memory.NewWorkClassRepository(store), workclass.Policy{})

	p, err := resolver.Resolve(ctx, "u-part")
	require.NoError(t, err)
	assert.Equal(t, 6.0, p.DailyWorkHours)
	assert.Equal(t, 0.5, p.LunchHours)

	for _, id := range []string{"u-retired", "u-dangling", "u-none"} {
		p, err := resolver.Resolve(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, workclass.DefaultPolicy(), p, id)
	}

	_, err = resolver.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
