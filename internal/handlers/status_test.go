package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"

	"linkmint/internal/models"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "status error keeps its code",
			err:      models.NewStatusError(http.StatusPaymentRequired, "Your plan (free) allows max 1 sponsored links. Upgrade to add more."),
			wantCode: http.StatusPaymentRequired,
			wantBody: "Your plan (free) allows max 1 sponsored links",
		},
		{
			name:     "bio not found",
			err:      models.ErrBioNotFound,
			wantCode: http.StatusNotFound,
			wantBody: "Bio not found",
		},
		{
			name:     "offer not found",
			err:      models.ErrOfferNotFound,
			wantCode: http.StatusNotFound,
			wantBody: "Offer not found",
		},
		{
			name:     "adoption not found",
			err:      models.ErrAdoptionNotFound,
			wantCode: http.StatusNotFound,
			wantBody: "Adoption not found",
		},
		{
			name:     "duplicate key maps to conflict",
			err:      &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"},
			wantCode: http.StatusConflict,
			wantBody: "already adopted",
		},
		{
			name:     "foreign key maps to bad request",
			err:      &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"},
			wantCode: http.StatusBadRequest,
			wantBody: "Invalid reference",
		},
		{
			name:     "unknown error is a 500",
			err:      errors.New("connection reset"),
			wantCode: http.StatusInternalServerError,
			wantBody: "connection reset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tt.err)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body containing %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sponsored/click/abc", nil)
	r.RemoteAddr = "198.51.100.9:54021"
	if got := clientIP(r); got != "198.51.100.9" {
		t.Fatalf("expected remote addr host, got %s", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %s", got)
	}
}

func TestRedirectFallbackOnMissingCode(t *testing.T) {
	h := &ClickHandler{FallbackURL: "https://linkmint.example/link-not-found"}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/sponsored/click/", nil)
	h.Redirect(rec, r)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != h.FallbackURL {
		t.Fatalf("expected fallback redirect, got %s", loc)
	}
}
