package memory

import (
	"context"
	"sort"

	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
)

type userRepository struct{ s *Store }

func NewUserRepository(s *Store) user.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	var (
		u  user.User
		ok bool
	)
	r.s.locked(func(st *state) { u, ok = st.users[id] })
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepository) ListActive(ctx context.Context) ([]user.User, error) {
	var out []user.User
	r.s.locked(func(st *state) {
		for _, u := range st.users {
			if u.IsActive {
				out = append(out, u)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type workClassRepository struct{ s *Store }

func NewWorkClassRepository(s *Store) workclass.WorkClassRepository {
	return &workClassRepository{s: s}
}

func (r *workClassRepository) GetByID(ctx context.Context, id string) (workclass.WorkClass, error) {
	var (
		wc workclass.WorkClass
		ok bool
	)
	r.s.locked(func(st *state) { wc, ok = st.workClasses[id] })
	if !ok {
		return workclass.WorkClass{}, workclass.ErrWorkClassNotFound
	}
	return wc, nil
}
