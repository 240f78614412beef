package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/timerecord"
	"github.com/skponto/skponto-backend-go/internal/handler/http/response"
	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
	"github.com/skponto/skponto-backend-go/internal/service/file"
)

const maxMultipartMemory = 10 << 20

type TimeRecordHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	LunchOut(w http.ResponseWriter, r *http.Request)
	LunchIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)

	Settle(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	AttachAttestation(w http.ResponseWriter, r *http.Request)
}

type TimeRecordHandlerImpl struct {
	timeRecordService timerecord.TimeRecordService
	settlementService hourbank.SettlementService
	fileService       file.FileService
}

func NewTimeRecordHandler(timeRecordService timerecord.TimeRecordService, settlementService hourbank.SettlementService, fileService file.FileService) TimeRecordHandler {
	return &TimeRecordHandlerImpl{
		timeRecordService: timeRecordService,
		settlementService: settlementService,
		fileService:       fileService,
	}
}

func (h *TimeRecordHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, timerecord.ActionEntry, "Clocked in successfully")
}

func (h *TimeRecordHandlerImpl) LunchOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, timerecord.ActionLunchOut, "Lunch break started")
}

func (h *TimeRecordHandlerImpl) LunchIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, timerecord.ActionLunchIn, "Lunch break finished")
}

func (h *TimeRecordHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, timerecord.ActionExit, "Clocked out successfully")
}

func (h *TimeRecordHandlerImpl) clock(w http.ResponseWriter, r *http.Request, action timerecord.ClockAction, message string) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	record, err := h.timeRecordService.Clock(r.Context(), userID, action)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, record)
}

// ListMine implements TimeRecordHandler.
func (h *TimeRecordHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	records, err := h.timeRecordService.ListMine(r.Context(), userID, timerecord.RecordFilter{
		From: getOptionalQueryParam(r, "from"),
		To:   getOptionalQueryParam(r, "to"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, records)
}

// Settle implements TimeRecordHandler.
func (h *TimeRecordHandlerImpl) Settle(w http.ResponseWriter, r *http.Request) {
	date, ok := validator.IsValidDate(chi.URLParam(r, "date"))
	if !ok {
		response.HandleError(w, validator.Single("date", "date must be YYYY-MM-DD"))
		return
	}

	tx, err := h.settlementService.SettleDate(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if tx == nil {
		response.SuccessWithMessage(w, "Nothing to settle for this day", nil)
		return
	}
	response.SuccessWithMessage(w, "Day settled", tx)
}

// Edit implements TimeRecordHandler.
func (h *TimeRecordHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	var req timerecord.EditRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Edit time record decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	record, err := h.timeRecordService.EditRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Time record updated", record)
}

// AttachAttestation implements TimeRecordHandler. It accepts either a JSON
// body referencing an existing attestation or a multipart upload in "file".
func (h *TimeRecordHandlerImpl) AttachAttestation(w http.ResponseWriter, r *http.Request) {
	req := timerecord.AttachAttestationRequest{ID: chi.URLParam(r, "id")}

	uploaded := false
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		key, err := h.uploadAttestation(r, req.ID)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		req.AttestationID = key
		uploaded = true
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AttachAttestation decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	record, err := h.timeRecordService.AttachAttestation(r.Context(), req)
	if err != nil {
		if uploaded {
			if delErr := h.fileService.DeleteFile(r.Context(), req.AttestationID); delErr != nil {
				slog.Warn("failed to remove orphaned attestation", "path", req.AttestationID, "error", delErr)
			}
		}
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Medical attestation attached", record)
}

func (h *TimeRecordHandlerImpl) uploadAttestation(r *http.Request, timeRecordID string) (string, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return "", validator.Single("file", "invalid multipart form")
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		return "", validator.Single("file", "file is required")
	}
	defer f.Close()

	key, err := h.fileService.UploadAttestation(r.Context(), timeRecordID, f, header.Filename)
	if errors.Is(err, file.ErrUnsupportedFileType) || errors.Is(err, file.ErrFileTooLarge) {
		return "", validator.Wrap("file", err)
	}
	return key, err
}
