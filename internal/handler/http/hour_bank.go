package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/handler/http/response"
)

type HourBankHandler interface {
	GetMyBalance(w http.ResponseWriter, r *http.Request)
	ListMyTransactions(w http.ResponseWriter, r *http.Request)

	GetBalance(w http.ResponseWriter, r *http.Request)
	ListTransactions(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
	ReconcileAll(w http.ResponseWriter, r *http.Request)
	Adjust(w http.ResponseWriter, r *http.Request)
}

type HourBankHandlerImpl struct {
	hourBankService hourbank.HourBankService
}

func NewHourBankHandler(hourBankService hourbank.HourBankService) HourBankHandler {
	return &HourBankHandlerImpl{hourBankService: hourBankService}
}

// GetMyBalance implements HourBankHandler.
func (h *HourBankHandlerImpl) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	h.writeBalance(w, r, userID)
}

// GetBalance implements HourBankHandler.
func (h *HourBankHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	h.writeBalance(w, r, chi.URLParam(r, "userID"))
}

func (h *HourBankHandlerImpl) writeBalance(w http.ResponseWriter, r *http.Request, userID string) {
	balance, err := h.hourBankService.GetBalance(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, balance)
}

// ListMyTransactions implements HourBankHandler.
func (h *HourBankHandlerImpl) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	h.writeTransactions(w, r, userID)
}

// ListTransactions implements HourBankHandler.
func (h *HourBankHandlerImpl) ListTransactions(w http.ResponseWriter, r *http.Request) {
	h.writeTransactions(w, r, chi.URLParam(r, "userID"))
}

func (h *HourBankHandlerImpl) writeTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	filter := hourbank.TransactionFilter{
		Type:  getOptionalQueryParam(r, "type"),
		From:  getOptionalQueryParam(r, "from"),
		To:    getOptionalQueryParam(r, "to"),
		Page:  getIntQueryParam(r, "page", 1),
		Limit: getIntQueryParam(r, "limit", 20),
	}

	result, err := h.hourBankService.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Reconcile implements HourBankHandler.
func (h *HourBankHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.hourBankService.Reconcile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, report)
}

// ReconcileAll implements HourBankHandler.
func (h *HourBankHandlerImpl) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	reports, err := h.hourBankService.ReconcileAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, reports)
}

// Adjust implements HourBankHandler.
func (h *HourBankHandlerImpl) Adjust(w http.ResponseWriter, r *http.Request) {
	adminID, _, ok := currentUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req hourbank.AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Adjust decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = chi.URLParam(r, "userID")
	req.CreatedBy = adminID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tx, err := h.hourBankService.AdminAdjust(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Hour bank adjusted successfully", tx)
}
