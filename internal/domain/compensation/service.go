package compensation

import "context"

type CompensationService interface {
	Submit(ctx context.Context, req SubmitRequest) (CompensationResponse, error)
	Approve(ctx context.Context, compensationID, approverID string) (CompensationResponse, error)
	Reject(ctx context.Context, req RejectRequest) (CompensationResponse, error)
	Cancel(ctx context.Context, compensationID, userID string) (CompensationResponse, error)
	Get(ctx context.Context, compensationID string) (CompensationResponse, error)
	List(ctx context.Context, filter CompensationFilter) (ListCompensationResponse, error)
}
