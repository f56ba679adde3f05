package data

import (
	"net/http"
	"strconv"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/internal/ui/features/data/pages"
)

// DefaultPreviewLimit is the number of rows shown when none is configured.
const DefaultPreviewLimit = 10

// Handlers provides HTTP handlers for the data feature.
type Handlers struct {
	engine       *practice.Engine
	previewLimit int
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *practice.Engine, previewLimit int, isDev bool) *Handlers {
	if previewLimit <= 0 {
		previewLimit = DefaultPreviewLimit
	}
	return &Handlers{engine: eng, previewLimit: previewLimit, isDev: isDev}
}

// DataPage renders the practice table schema and its first rows.
// ?limit=0 shows every row.
func (h *Handlers) DataPage(w http.ResponseWriter, r *http.Request) {
	limit := h.previewLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ctx := r.Context()
	meta, err := h.engine.Schema(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	preview, err := h.engine.Preview(ctx, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := pages.DataPage(meta, preview, h.isDev).Render(ctx, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
