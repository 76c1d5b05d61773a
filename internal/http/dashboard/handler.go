package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sempreviva/dashboard/internal/dashboard"
	"github.com/sempreviva/dashboard/internal/transaction"
)

type Handler struct {
	svc *dashboard.Service
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.overview)
	r.Get("/{type}", h.detail)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.svc.Overview(r.Context(), start, end)
	if err != nil {
		slog.Error("failed to load overview", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, toOverviewResponse(o))
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	txType, err := transaction.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := h.svc.Detail(r.Context(), txType, start, end)
	if err != nil {
		if errors.Is(err, transaction.ErrInvalidType) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.Error("failed to load detail", "type", txType, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, toDetailResponse(d))
}

func parseRange(r *http.Request) (*time.Time, *time.Time, error) {
	q := r.URL.Query()

	start, err := transaction.ParseDateBound(q.Get("start_date"))
	if err != nil {
		return nil, nil, err
	}

	end, err := transaction.ParseDateBound(q.Get("end_date"))
	if err != nil {
		return nil, nil, err
	}

	return start, end, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
