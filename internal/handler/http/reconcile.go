package http

import (
	"fmt"
	"net/http"

	"github.com/geoattend/attendance-backend-go/internal/domain/reconcile"
	"github.com/geoattend/attendance-backend-go/internal/handler/http/response"
)

type ReconcileHandler interface {
	Reconcile(w http.ResponseWriter, r *http.Request)
}

type reconcileHandlerImpl struct {
	reconcileService reconcile.ReconcileService
}

func NewReconcileHandler(reconcileService reconcile.ReconcileService) ReconcileHandler {
	return &reconcileHandlerImpl{
		reconcileService: reconcileService,
	}
}

// Reconcile handles POST /admin/attendance/reconcile?date=YYYY-MM-DD and runs the sweep synchronously.
func (h *reconcileHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconcileService.ReconcileDay(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("Marked %d users absent for %s", result.Created, result.Date), result)
}
