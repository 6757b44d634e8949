// Package api exposes the household ledger over a JSON HTTP API.
//
// Handlers stay thin: they decode the request, call the service layer
// and translate its errors to HTTP status codes. All domain rules live
// in internal/service and internal/ledger.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"homeledger/internal/auth"
	"homeledger/internal/metrics"
	"homeledger/internal/service"
	"homeledger/internal/storage"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	svc   *service.HouseholdService
	authn *auth.PasswordAuthenticator
	jwt   *auth.JWTManager
}

// New creates a Handler. The authenticator and JWT manager may be nil
// when the API runs without authentication (tests, local tooling); the
// auth routes are only registered when both are present.
func New(svc *service.HouseholdService, authn *auth.PasswordAuthenticator, jwt *auth.JWTManager) *Handler {
	return &Handler{svc: svc, authn: authn, jwt: jwt}
}

// Routes registers every API route on mux. Routes under /api/v1 other
// than the auth endpoints are wrapped with protect, which may be nil to
// leave them open.
func (h *Handler) Routes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	api := http.NewServeMux()
	handle := func(pattern string, fn http.HandlerFunc) {
		api.Handle(pattern, metrics.Instrument(pattern, fn))
	}

	handle("GET /api/v1/members", h.listMembers)
	handle("POST /api/v1/members", h.createMember)
	handle("GET /api/v1/members/{id}", h.getMember)
	handle("PUT /api/v1/members/{id}", h.updateMember)
	handle("DELETE /api/v1/members/{id}", h.deleteMember)
	handle("POST /api/v1/members/{id}/credit", h.adjustCredit)
	handle("GET /api/v1/members/{id}/summary", h.monthlySummary)
	handle("GET /api/v1/members/{id}/outstanding", h.outstandingBills)
	handle("POST /api/v1/members/{id}/paydown", h.payDown)

	handle("GET /api/v1/bills", h.listBills)
	handle("POST /api/v1/bills", h.createBill)
	handle("GET /api/v1/bills/{id}", h.getBill)
	handle("PUT /api/v1/bills/{id}", h.updateBill)
	handle("DELETE /api/v1/bills/{id}", h.deleteBill)
	handle("POST /api/v1/bills/{id}/payments", h.recordPayment)

	handle("GET /api/v1/balances", h.balances)
	handle("GET /api/v1/settlements", h.settlements)
	handle("GET /api/v1/settlements/records", h.listSettlementRecords)
	handle("POST /api/v1/settlements/records", h.createSettlementRecord)
	handle("DELETE /api/v1/settlements/records/{id}", h.deleteSettlementRecord)
	handle("DELETE /api/v1/settlements/records", h.clearSettlementRecords)

	var protected http.Handler = api
	if protect != nil {
		protected = protect(api)
	}
	mux.Handle("/api/v1/", protected)

	if h.authn != nil && h.jwt != nil {
		pattern := "POST /api/v1/auth/register"
		mux.Handle(pattern, metrics.Instrument(pattern, http.HandlerFunc(h.register)))
		pattern = "POST /api/v1/auth/login"
		mux.Handle(pattern, metrics.Instrument(pattern, http.HandlerFunc(h.login)))
	}

	mux.HandleFunc("GET /healthz", h.health)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service and storage errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailExists):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decode reads a JSON request body into v, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", service.ErrValidation, err)
	}
	return nil
}
