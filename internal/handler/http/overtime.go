package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
	"github.com/skponto/skponto-backend-go/internal/handler/http/response"
)

type OvertimeHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	GetMySettings(w http.ResponseWriter, r *http.Request)

	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	CorrectActualHours(w http.ResponseWriter, r *http.Request)
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
}

type OvertimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &OvertimeHandlerImpl{overtimeService: overtimeService}
}

// Submit implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req overtime.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit overtime decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = userID

	result, err := h.overtimeService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Overtime request submitted", result)
}

// ListMine implements OvertimeHandler.
func (h *OvertimeHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	filter := h.filter(r)
	filter.UserID = &userID
	h.list(w, r, filter)
}

// List implements OvertimeHandler.
func (h *OvertimeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := h.filter(r)
	filter.UserID = getOptionalQueryParam(r, "user_id")
	h.list(w, r, filter)
}

func (h *OvertimeHandlerImpl) filter(r *http.Request) overtime.RequestFilter {
	return overtime.RequestFilter{
		Status: getOptionalQueryParam(r, "status"),
		From:   getOptionalQueryParam(r, "from"),
		To:     getOptionalQueryParam(r, "to"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}
}

func (h *OvertimeHandlerImpl) list(w http.ResponseWriter, r *http.Request, filter overtime.RequestFilter) {
	result, err := h.overtimeService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Get implements OvertimeHandler. Workers only see their own requests.
func (h *OvertimeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.overtimeService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if result.UserID != userID && !isAdmin(role) {
		response.HandleError(w, overtime.ErrNotRequestOwner)
		return
	}
	response.Success(w, result)
}

// Cancel implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.overtimeService.Cancel(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime request cancelled", result)
}

// Approve implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	approverID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req overtime.ApproveRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("Approve overtime decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	req.ID = chi.URLParam(r, "id")
	req.ApproverID = approverID

	result, err := h.overtimeService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime request approved", result)
}

// Reject implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	approverID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req overtime.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Reject overtime decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ApproverID = approverID

	result, err := h.overtimeService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime request rejected", result)
}

// CorrectActualHours implements OvertimeHandler.
func (h *OvertimeHandlerImpl) CorrectActualHours(w http.ResponseWriter, r *http.Request) {
	var req overtime.CorrectActualHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CorrectActualHours decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.overtimeService.CorrectActualHours(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Actual hours corrected", result)
}

// GetMySettings implements OvertimeHandler.
func (h *OvertimeHandlerImpl) GetMySettings(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	h.writeSettings(w, r, userID)
}

// GetSettings implements OvertimeHandler.
func (h *OvertimeHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.writeSettings(w, r, chi.URLParam(r, "userID"))
}

func (h *OvertimeHandlerImpl) writeSettings(w http.ResponseWriter, r *http.Request, userID string) {
	settings, err := h.overtimeService.GetSettings(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, settings)
}

// UpdateSettings implements OvertimeHandler.
func (h *OvertimeHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req overtime.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateSettings decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = chi.URLParam(r, "userID")

	settings, err := h.overtimeService.UpdateSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Overtime settings updated", settings)
}
