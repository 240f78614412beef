package overtime

import "context"

type OvertimeService interface {
	Submit(ctx context.Context, req SubmitRequest) (RequestResponse, error)
	Approve(ctx context.Context, req ApproveRequest) (RequestResponse, error)
	Reject(ctx context.Context, req RejectRequest) (RequestResponse, error)
	Cancel(ctx context.Context, requestID, userID string) (RequestResponse, error)
	CorrectActualHours(ctx context.Context, req CorrectActualHoursRequest) (RequestResponse, error)
	Get(ctx context.Context, requestID string) (RequestResponse, error)
	List(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)

	GetSettings(ctx context.Context, userID string) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
}
