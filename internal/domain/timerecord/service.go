package timerecord

import "context"

type TimeRecordService interface {
	Clock(ctx context.Context, userID string, action ClockAction) (TimeRecordResponse, error)
	ListMine(ctx context.Context, userID string, filter RecordFilter) ([]TimeRecordResponse, error)
	EditRecord(ctx context.Context, req EditRecordRequest) (TimeRecordResponse, error)
	AttachAttestation(ctx context.Context, req AttachAttestationRequest) (TimeRecordResponse, error)
}
