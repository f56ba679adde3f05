package resources

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"stylesheet", "/static/app.css", http.StatusOK},
		{"missing asset", "/static/missing.js", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestStaticPath(t *testing.T) {
	assert.Equal(t, "/static/app.css", StaticPath("app.css"))
	assert.True(t, Exists("app.css"))
	assert.False(t, Exists("nope.css"))
}
