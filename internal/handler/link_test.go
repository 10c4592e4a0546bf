package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vidtrack/vidtrack/internal/handler/dto"
	"github.com/vidtrack/vidtrack/internal/metrics"
	"github.com/vidtrack/vidtrack/internal/service"
	"github.com/vidtrack/vidtrack/internal/testutil"
)

const testBaseURL = "https://go.test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLinkRouter(t *testing.T) (*chi.Mux, *testutil.MemStore) {
	t.Helper()

	store := testutil.NewMemStore()
	svc := service.NewLinkService(store, testBaseURL, metrics.NewNoop())
	h := NewLinkHandler(svc, discardLogger())

	r := chi.NewRouter()
	r.Post("/api/v1/links", h.Create)
	r.Get("/api/v1/links", h.List)
	r.Get("/api/v1/links/{slug}", h.Get)

	return r, store
}

func TestLinkHandler_Create(t *testing.T) {
	t.Parallel()

	router, _ := newLinkRouter(t)

	body := `{"slug":"spring-launch","title":"Spring Launch","destination_url":"https://calendly.com/acme/intro"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp dto.LinkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Slug != "spring-launch" {
		t.Errorf("slug = %q, want %q", resp.Slug, "spring-launch")
	}
	if resp.ShortURL != testBaseURL+"/go/spring-launch" {
		t.Errorf("short_url = %q", resp.ShortURL)
	}
	if resp.ID == "" {
		t.Error("expected non-empty id")
	}
}

func TestLinkHandler_Create_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"slug":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "invalid slug",
			body:       `{"slug":"a b c","title":"T","destination_url":"https://example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_SLUG",
		},
		{
			name:       "reserved slug",
			body:       `{"slug":"api","title":"T","destination_url":"https://example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_SLUG",
		},
		{
			name:       "bad destination scheme",
			body:       `{"slug":"ok-slug","title":"T","destination_url":"javascript:alert(1)"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_DESTINATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newLinkRouter(t)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var resp dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestLinkHandler_Create_DuplicateSlug(t *testing.T) {
	t.Parallel()

	router, _ := newLinkRouter(t)

	body := `{"slug":"taken","title":"T","destination_url":"https://example.com"}`
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}
}

func TestLinkHandler_Get(t *testing.T) {
	t.Parallel()

	router, store := newLinkRouter(t)
	link := testutil.NewTestLink(t, "case-study")
	if err := store.CreateLink(context.Background(), link); err != nil {
		t.Fatalf("seed link: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/links/case-study", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp dto.LinkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Slug != "case-study" {
		t.Errorf("slug = %q", resp.Slug)
	}
}

func TestLinkHandler_Get_NotFound(t *testing.T) {
	t.Parallel()

	router, _ := newLinkRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/links/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestLinkHandler_List_Pagination(t *testing.T) {
	t.Parallel()

	router, store := newLinkRouter(t)
	for _, slug := range []string{"one", "two", "three"} {
		if err := store.CreateLink(context.Background(), testutil.NewTestLink(t, slug)); err != nil {
			t.Fatalf("seed link %s: %v", slug, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/links?page=1&per_page=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp dto.ListLinksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Links) != 2 {
		t.Errorf("len(links) = %d, want 2", len(resp.Links))
	}
	if resp.Page != 1 || resp.PerPage != 2 {
		t.Errorf("page = %d per_page = %d", resp.Page, resp.PerPage)
	}
}
