package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lendana/loan-engine/internal/service"
	"github.com/lendana/loan-engine/pkg/response"
)

// AdminHandler exposes operator tooling: re-arming dispatch flags and
// forcing a sweep outside the schedule.
type AdminHandler struct {
	ledger     *service.LedgerService
	dispatcher *service.DispatcherService
}

func NewAdminHandler(ledger *service.LedgerService, dispatcher *service.DispatcherService) *AdminHandler {
	return &AdminHandler{
		ledger:     ledger,
		dispatcher: dispatcher,
	}
}

// ResetDispatchFlags handles POST /admin/terms/{termId}/reset-dispatch-flags
func (h *AdminHandler) ResetDispatchFlags(w http.ResponseWriter, r *http.Request) {
	termID, err := uuid.Parse(mux.Vars(r)["termId"])
	if err != nil {
		response.BadRequest(w, "invalid term id", err)
		return
	}

	if err := h.ledger.ResetDispatchFlags(r.Context(), termID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"term_id": termID.String(), "result": "flags reset"})
}

// TriggerSweep handles POST /admin/sweep
func (h *AdminHandler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.dispatcher.Sweep(r.Context())
	if err != nil {
		response.InternalServerError(w, "sweep failed", err)
		return
	}

	response.Success(w, report)
}
