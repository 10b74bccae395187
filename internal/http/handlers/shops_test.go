package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query          string
		expectedLimit  int
		expectedOffset int
	}{
		{"", 20, 0},
		{"page=1&limit=10", 10, 0},
		{"page=3&limit=10", 10, 20},
		{"page=2", 20, 20},
		{"limit=500", 20, 0},
		{"page=0&limit=-5", 20, 0},
		{"page=abc&limit=xyz", 20, 0},
	}

	e := echo.New()
	for _, test := range tests {
		req := httptest.NewRequest(echo.GET, "/?"+test.query, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		limit, offset := parsePagination(c)
		if limit != test.expectedLimit || offset != test.expectedOffset {
			t.Errorf("parsePagination(%q) = (%d, %d), expected (%d, %d)",
				test.query, limit, offset, test.expectedLimit, test.expectedOffset)
		}
	}
}
