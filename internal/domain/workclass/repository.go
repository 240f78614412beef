package workclass

import "context"

type WorkClassRepository interface {
	GetByID(ctx context.Context, id string) (WorkClass, error)
}
