package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumaevents/internal/domain"
)

type sampleRequest struct {
	Title    string `json:"title" validate:"required,max=10"`
	Position int    `json:"position" validate:"gte=0"`
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantOK      bool
		wantMessage string
	}{
		{name: "valid", body: `{"title":"Meetup","position":1}`, wantOK: true},
		{name: "missing title", body: `{"position":1}`, wantMessage: "title is required"},
		{name: "too long", body: `{"title":"a very long title"}`, wantMessage: "title must be at most 10 characters"},
		{name: "negative", body: `{"title":"x","position":-1}`, wantMessage: "position must be >= 0"},
		{name: "unknown field", body: `{"title":"x","color":"red"}`, wantMessage: "unknown field"},
		{name: "malformed", body: `{`, wantMessage: "unexpected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			var dest sampleRequest
			ok := DecodeAndValidate(w, req, &dest)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeBadRequest, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMessage)
		})
	}
}

func TestWriteDomainError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{fmt.Errorf("register: %w", domain.ErrDuplicateRegistration), http.StatusConflict, ErrCodeDuplicateRegistration},
		{domain.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
		{fmt.Errorf("%w: title is required", domain.ErrInvalidInput), http.StatusBadRequest, ErrCodeBadRequest},
		{fmt.Errorf("%w: dial tcp", domain.ErrStoreUnavailable), http.StatusServiceUnavailable, ErrCodeStoreUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteDomainError(w, httptest.NewRequest(http.MethodGet, "/", nil), logger, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Nil(t, resp.Data)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query   string
		want    domain.PaginationParams
		wantErr bool
	}{
		{query: "", want: domain.PaginationParams{Page: 1, PageSize: DefaultPageSize}},
		{query: "page=3&page_size=5", want: domain.PaginationParams{Page: 3, PageSize: 5}},
		{query: "page_size=1000", want: domain.PaginationParams{Page: 1, PageSize: MaxPageSize}},
		{query: "page=4611686018427387904", want: domain.PaginationParams{Page: 4611686018427387904, PageSize: DefaultPageSize}},
		{query: "page=0", wantErr: true},
		{query: "page_size=-2", wantErr: true},
		{query: "page=abc", wantErr: true},
		{query: "page=99999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events?"+tt.query, nil)
			got, err := ParsePagination(req)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	page, meta := Paginate(items, domain.PaginationParams{Page: 2, PageSize: 2})
	assert.Equal(t, []string{"c", "d"}, page)
	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 2, Total: 5, TotalPages: 3}, meta)

	page, meta = Paginate(items, domain.PaginationParams{Page: 1 << 62, PageSize: 20})
	assert.Empty(t, page)
	assert.Equal(t, 5, meta.Total)
	assert.Equal(t, 1, meta.TotalPages)

	page, meta = Paginate([]string{}, domain.PaginationParams{Page: 1, PageSize: 20})
	assert.Empty(t, page)
	assert.Equal(t, 0, meta.TotalPages)
}
