package workhours

import (
	"context"
	"errors"
	"fmt"

	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
)

// PolicyResolver looks up the expected-hours policy of a user.
type PolicyResolver struct {
	userRepo      user.UserRepository
	workClassRepo workclass.WorkClassRepository
	fallback      workclass.Policy
}

func NewPolicyResolver(userRepo user.UserRepository, workClassRepo workclass.WorkClassRepository, fallback workclass.Policy) *PolicyResolver {
	if fallback.DailyWorkHours <= 0 {
		fallback = workclass.DefaultPolicy()
	}
	return &PolicyResolver{userRepo: userRepo, workClassRepo: workClassRepo, fallback: fallback}
}

// Resolve returns the user's work class policy. A missing or inactive work
// class yields the fallback policy.
func (p *PolicyResolver) Resolve(ctx context.Context, userID string) (workclass.Policy, error) {
	u, err := p.userRepo.GetByID(ctx, userID)
	if err != nil {
		return workclass.Policy{}, err
	}
	if u.WorkClassID == nil {
		return p.fallback, nil
	}

	wc, err := p.workClassRepo.GetByID(ctx, *u.WorkClassID)
	if errors.Is(err, workclass.ErrWorkClassNotFound) {
		return p.fallback, nil
	}
	if err != nil {
		return workclass.Policy{}, fmt.Errorf("get work class: %w", err)
	}
	if !wc.IsActive || wc.DailyWorkHours <= 0 {
		return p.fallback, nil
	}
	return workclass.PolicyOf(&wc), nil
}
