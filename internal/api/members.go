package api

import (
	"fmt"
	"net/http"

	"homeledger/internal/models"
	"homeledger/internal/service"
)

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListMembers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) createMember(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := decode(r, &member); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.CreateMember(r.Context(), &member); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &member)
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.svc.GetMember(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := decode(r, &member); err != nil {
		writeError(w, r, err)
		return
	}
	member.ID = r.PathValue("id")
	if err := h.svc.UpdateMember(r.Context(), &member); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &member)
}

func (h *Handler) deleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMember(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type creditRequest struct {
	// Action is add, use or set.
	Action string  `json:"action"`
	Amount float64 `json:"amount"`
}

type creditResponse struct {
	MemberID string  `json:"memberId"`
	Credit   float64 `json:"credit"`
}

func (h *Handler) adjustCredit(w http.ResponseWriter, r *http.Request) {
	memberID := r.PathValue("id")

	var req creditRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var (
		credit float64
		err    error
	)
	switch req.Action {
	case "add":
		credit, err = h.svc.AddCredit(r.Context(), memberID, req.Amount)
	case "use":
		credit, err = h.svc.UseCredit(r.Context(), memberID, req.Amount)
	case "set":
		err = h.svc.SetCredit(r.Context(), memberID, req.Amount)
		credit = req.Amount
	default:
		err = fmt.Errorf("%w: unknown credit action %q", service.ErrValidation, req.Action)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, creditResponse{MemberID: memberID, Credit: credit})
}
