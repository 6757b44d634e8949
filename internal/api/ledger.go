package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"homeledger/internal/models"
	"homeledger/internal/service"
)

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.svc.Balances(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (h *Handler) settlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.svc.Settlements(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settlements)
}

// monthlySummary expects year and month query parameters, e.g.
// /api/v1/members/{id}/summary?year=2026&month=3.
func (h *Handler) monthlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid year", service.ErrValidation))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, r, fmt.Errorf("%w: invalid month", service.ErrValidation))
		return
	}

	summary, err := h.svc.MonthlySummary(r.Context(), r.PathValue("id"), year, time.Month(month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) outstandingBills(w http.ResponseWriter, r *http.Request) {
	outstanding, err := h.svc.OutstandingBills(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outstanding)
}

type payDownRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) payDown(w http.ResponseWriter, r *http.Request) {
	var req payDownRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	allocations, err := h.svc.PayDown(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, allocations)
}

func (h *Handler) listSettlementRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListSettlementRecords(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) createSettlementRecord(w http.ResponseWriter, r *http.Request) {
	var record models.SettlementRecord
	if err := decode(r, &record); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.RecordSettlement(r.Context(), &record); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &record)
}

func (h *Handler) deleteSettlementRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSettlementRecord(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearSettlementRecords(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearSettlementRecords(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
