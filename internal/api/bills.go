package api

import (
	"net/http"

	"homeledger/internal/models"
	"homeledger/internal/service"
)

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.ListBills(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var bill models.Bill
	if err := decode(r, &bill); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.CreateBill(r.Context(), &bill); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &bill)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetBill(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) updateBill(w http.ResponseWriter, r *http.Request) {
	var bill models.Bill
	if err := decode(r, &bill); err != nil {
		writeError(w, r, err)
		return
	}
	bill.ID = r.PathValue("id")
	if err := h.svc.UpdateBill(r.Context(), &bill); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &bill)
}

func (h *Handler) deleteBill(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBill(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req service.PaymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.BillID = r.PathValue("id")

	result, err := h.svc.RecordPayment(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
