package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/skponto/skponto-backend-go/internal/domain/compensation"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/handler/http/response"
)

type CompensationHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)

	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type CompensationHandlerImpl struct {
	compensationService compensation.CompensationService
}

func NewCompensationHandler(compensationService compensation.CompensationService) CompensationHandler {
	return &CompensationHandlerImpl{compensationService: compensationService}
}

func isAdmin(role user.Role) bool {
	return role == user.RoleAdmin
}

// Submit implements CompensationHandler.
func (h *CompensationHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req compensation.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit compensation decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = userID

	result, err := h.compensationService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Compensation request submitted", result)
}

// ListMine implements CompensationHandler.
func (h *CompensationHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	h.list(w, r, compensation.CompensationFilter{
		UserID: &userID,
		Status: getOptionalQueryParam(r, "status"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	})
}

// List implements CompensationHandler.
func (h *CompensationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, compensation.CompensationFilter{
		UserID: getOptionalQueryParam(r, "user_id"),
		Status: getOptionalQueryParam(r, "status"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	})
}

func (h *CompensationHandlerImpl) list(w http.ResponseWriter, r *http.Request, filter compensation.CompensationFilter) {
	result, err := h.compensationService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Get implements CompensationHandler. Workers only see their own requests.
func (h *CompensationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.compensationService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if result.UserID != userID && !isAdmin(role) {
		response.HandleError(w, compensation.ErrNotRequestOwner)
		return
	}
	response.Success(w, result)
}

// Cancel implements CompensationHandler.
func (h *CompensationHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.compensationService.Cancel(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Compensation request cancelled", result)
}

// Approve implements CompensationHandler.
func (h *CompensationHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	approverID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.compensationService.Approve(r.Context(), chi.URLParam(r, "id"), approverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Compensation applied", result)
}

// Reject implements CompensationHandler.
func (h *CompensationHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	approverID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req compensation.RejectRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("Reject compensation decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	req.ID = chi.URLParam(r, "id")
	req.ApproverID = approverID

	result, err := h.compensationService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Compensation request rejected", result)
}
