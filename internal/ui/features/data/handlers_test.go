package data

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqldrill/internal/ui/features"
)

func TestDataPage(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantRows   int
		wantBody   []string
	}{
		{
			name:       "default preview",
			wantStatus: http.StatusOK,
			wantRows:   10,
			wantBody:   []string{"<title>Dữ liệu - sqldrill</title>", "<h1>SalesOrderHeader</h1>", "Xem trước (10 dòng)", "<td>43659</td>", `<td class="null">NULL</td>`},
		},
		{name: "all rows", query: "?limit=0", wantStatus: http.StatusOK, wantRows: 15, wantBody: []string{"Xem trước (15 dòng)"}},
		{name: "custom limit", query: "?limit=3", wantStatus: http.StatusOK, wantRows: 3},
		{name: "invalid limit", query: "?limit=-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := features.SetupTestFixture(t)
			h := NewHandlers(fixture.Engine, 0, false)

			rec := httptest.NewRecorder()
			h.DataPage(rec, httptest.NewRequest(http.MethodGet, "/data"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
			resultTable := body[strings.Index(body, `class="result-table"`):]
			assert.Equal(t, tt.wantRows, strings.Count(resultTable, "<tr>")-1, "header row plus data rows")
		})
	}
}
