package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumaevents/internal/domain"
)

func TestSupabaseStorage_Upload(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Key":"event-images/org-1/a.png"}`))
	}))
	defer srv.Close()

	s, err := NewObjectStorage(Config{Provider: "supabase", ProjectURL: srv.URL + "/", ServiceKey: "svc-key", Bucket: "event-images"}, nil)
	require.NoError(t, err)

	url, err := s.Upload(context.Background(), "org-1/a.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/event-images/org-1/a.png", gotPath)
	assert.Equal(t, "Bearer svc-key", gotAuth)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("png"), gotBody)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/event-images/org-1/a.png", url)
}

func TestSupabaseStorage_UploadFailures(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		wantUnavailable bool
	}{
		{name: "rejected", status: http.StatusBadRequest},
		{name: "backend down", status: http.StatusBadGateway, wantUnavailable: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			s, err := NewObjectStorage(Config{Provider: "supabase", ProjectURL: srv.URL, ServiceKey: "k", Bucket: "b"}, nil)
			require.NoError(t, err)
			_, err = s.Upload(context.Background(), "p.png", "image/png", []byte("x"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "nope")
			assert.Equal(t, tt.wantUnavailable, errors.Is(err, domain.ErrStoreUnavailable))
		})
	}
}

func TestNewObjectStorage(t *testing.T) {
	_, err := NewObjectStorage(Config{Provider: "supabase", Bucket: "b"}, nil)
	require.Error(t, err)

	s, err := NewObjectStorage(Config{}, nil)
	require.NoError(t, err)
	_, err = s.Upload(context.Background(), "p.png", "image/png", []byte("x"))
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
