package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	Apply(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	ApproveDay(w http.ResponseWriter, r *http.Request)
	RejectDay(w http.ResponseWriter, r *http.Request)
	GetBalances(w http.ResponseWriter, r *http.Request)
	GetHolidays(w http.ResponseWriter, r *http.Request)
	GetRules(w http.ResponseWriter, r *http.Request)
	ConvertLOP(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.Service
}

func NewLeaveHandler(leaveService leave.Service) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// userIDFromContext extracts user_id from the verified JWT claims.
func userIDFromContext(r *http.Request) (string, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	userID, ok := claims["user_id"].(string)
	return userID, ok && userID != ""
}

// Apply implements LeaveHandler.
func (h *LeaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	var applyReq leave.ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&applyReq); err != nil {
		slog.Error("Apply decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	applyReq.EmployeeID = userID

	result, err := h.leaveService.Apply(r.Context(), applyReq)
	if err != nil {
		slog.Error("Apply service error", "error", err, "employee_id", userID)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

// Edit implements LeaveHandler.
func (h *LeaveHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	var editReq leave.EditLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&editReq); err != nil {
		slog.Error("Edit decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	editReq.RequestID = chi.URLParam(r, "requestID")
	editReq.EmployeeID = userID

	result, err := h.leaveService.Edit(r.Context(), editReq)
	if err != nil {
		slog.Error("Edit service error", "error", err, "request_id", editReq.RequestID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request updated", result)
}

// Delete implements LeaveHandler.
func (h *LeaveHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if err := h.leaveService.Delete(r.Context(), userID, requestID); err != nil {
		slog.Error("Delete service error", "error", err, "request_id", requestID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request withdrawn", nil)
}

// ListMine implements LeaveHandler.
func (h *LeaveHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	result, err := h.leaveService.ListMine(r.Context(), userID)
	if err != nil {
		slog.Error("ListMine service error", "error", err, "employee_id", userID)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListPending implements LeaveHandler.
func (h *LeaveHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	result, err := h.leaveService.ListPendingForApprover(r.Context(), userID)
	if err != nil {
		slog.Error("ListPending service error", "error", err, "approver_id", userID)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements LeaveHandler.
func (h *LeaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	result, err := h.leaveService.Get(r.Context(), userID, requestID)
	if err != nil {
		slog.Error("Get service error", "error", err, "request_id", requestID)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func decodeDecision(r *http.Request) leave.DecisionRequest {
	var decisionReq leave.DecisionRequest
	// Comment is optional; an empty body is fine.
	_ = json.NewDecoder(r.Body).Decode(&decisionReq)
	return decisionReq
}

// ApproveRequest implements LeaveHandler.
func (h *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	result, err := h.leaveService.ApproveRequest(r.Context(), userID, requestID, decodeDecision(r))
	if err != nil {
		slog.Error("ApproveRequest service error", "error", err, "request_id", requestID, "approver_id", userID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved", result)
}

// RejectRequest implements LeaveHandler.
func (h *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	result, err := h.leaveService.RejectRequest(r.Context(), userID, requestID, decodeDecision(r))
	if err != nil {
		slog.Error("RejectRequest service error", "error", err, "request_id", requestID, "approver_id", userID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", result)
}

// ApproveDay implements LeaveHandler.
func (h *LeaveHandlerImpl) ApproveDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	dayID := chi.URLParam(r, "dayID")
	result, err := h.leaveService.ApproveDay(r.Context(), userID, requestID, dayID, decodeDecision(r))
	if err != nil {
		slog.Error("ApproveDay service error", "error", err, "request_id", requestID, "day_id", dayID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave day approved", result)
}

// RejectDay implements LeaveHandler.
func (h *LeaveHandlerImpl) RejectDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	dayID := chi.URLParam(r, "dayID")
	result, err := h.leaveService.RejectDay(r.Context(), userID, requestID, dayID, decodeDecision(r))
	if err != nil {
		slog.Error("RejectDay service error", "error", err, "request_id", requestID, "day_id", dayID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave day rejected", result)
}

// GetBalances implements LeaveHandler.
func (h *LeaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	result, err := h.leaveService.GetBalances(r.Context(), userID)
	if err != nil {
		slog.Error("GetBalances service error", "error", err, "employee_id", userID)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetHolidays implements LeaveHandler.
func (h *LeaveHandlerImpl) GetHolidays(w http.ResponseWriter, r *http.Request) {
	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			response.BadRequest(w, "year must be a number", nil)
			return
		}
		year = parsed
	}

	result, err := h.leaveService.GetHolidays(r.Context(), year)
	if err != nil {
		slog.Error("GetHolidays service error", "error", err, "year", year)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRules implements LeaveHandler.
func (h *LeaveHandlerImpl) GetRules(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaveService.GetRules(r.Context())
	if err != nil {
		slog.Error("GetRules service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ConvertLOP implements LeaveHandler.
func (h *LeaveHandlerImpl) ConvertLOP(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	result, err := h.leaveService.ConvertLOPToCasual(r.Context(), userID, requestID)
	if err != nil {
		slog.Error("ConvertLOP service error", "error", err, "request_id", requestID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave converted to casual", result)
}
