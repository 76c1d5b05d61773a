package upload

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sempreviva/dashboard/internal/importer"
	"github.com/sempreviva/dashboard/internal/transaction"
)

// PreviewSize is the number of normalised rows echoed back after an upload.
const PreviewSize = 5

// Flusher drops derived data that an upload or a clear invalidates.
type Flusher interface {
	Flush()
}

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
	cache     Flusher
	maxBytes  int64
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, cache Flusher, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}

	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
		cache:     cache,
		maxBytes:  maxBytes,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/uploads", h.upload)
	r.Get("/files", h.recentFiles)
}

type recordResponse struct {
	Date        string           `json:"date"`
	Amount      float64          `json:"amount"`
	Type        transaction.Type `json:"type"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory"`
	Description string           `json:"description"`
}

type uploadResponse struct {
	Filename string           `json:"filename"`
	Inserted int              `json:"inserted"`
	Preview  []recordResponse `json:"preview"`
}

type fileResponse struct {
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
	RowCount   int       `json:"row_count"`
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	kind := r.FormValue("kind")
	if kind == "" {
		http.Error(w, "kind field is required", http.StatusBadRequest)
		return
	}

	txType, err := transaction.ParseType(kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	records, err := h.importSvc.Import(txType, header.Filename, file)
	if err != nil {
		if errors.Is(err, importer.ErrUnknownKind) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "failed to process file: "+err.Error(), http.StatusUnprocessableEntity)

		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), filepath.Base(header.Filename), records)
	if err != nil {
		slog.Error("failed to store upload", "filename", header.Filename, "error", err)
		http.Error(w, "failed to store upload", http.StatusInternalServerError)

		return
	}

	if h.cache != nil {
		h.cache.Flush()
	}

	resp := uploadResponse{
		Filename: result.Filename,
		Inserted: result.Inserted,
		Preview:  make([]recordResponse, 0, min(len(records), PreviewSize)),
	}
	for _, rec := range records[:min(len(records), PreviewSize)] {
		resp.Preview = append(resp.Preview, toRecordResponse(rec))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) recentFiles(w http.ResponseWriter, r *http.Request) {
	limit := transaction.DefaultRecentFilesLimit

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		limit = n
	}

	files, err := h.txSvc.RecentFiles(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]fileResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, fileResponse{
			Filename:   f.Filename,
			UploadDate: f.UploadDate,
			RowCount:   f.RowCount,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toRecordResponse(rec transaction.Record) recordResponse {
	return recordResponse{
		Date:        rec.Date,
		Amount:      rec.Amount,
		Type:        rec.Type,
		Category:    rec.Category,
		Subcategory: rec.Subcategory,
		Description: rec.Description,
	}
}
