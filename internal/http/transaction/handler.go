package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sempreviva/dashboard/internal/transaction"
)

// Flusher drops derived data that clearing the store invalidates.
type Flusher interface {
	Flush()
}

type Handler struct {
	svc   *transaction.Service
	cache Flusher
}

func NewHandler(svc *transaction.Service, cache Flusher) *Handler {
	return &Handler{svc: svc, cache: cache}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Delete("/", h.clear)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, transaction.ErrInvalidType) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toListResponse(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAll(r.Context()); err != nil {
		slog.Error("failed to clear transactions", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	if h.cache != nil {
		h.cache.Flush()
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseFilter(r *http.Request) (transaction.ListFilter, error) {
	var (
		filter transaction.ListFilter
		err    error
	)

	q := r.URL.Query()

	if filter.Start, err = transaction.ParseDateBound(q.Get("start_date")); err != nil {
		return filter, err
	}

	if filter.End, err = transaction.ParseDateBound(q.Get("end_date")); err != nil {
		return filter, err
	}

	if s := q.Get("type"); s != "" {
		t, err := transaction.ParseType(s)
		if err != nil {
			return filter, err
		}

		filter.Type = &t
	}

	return filter, nil
}
