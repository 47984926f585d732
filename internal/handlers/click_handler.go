package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"

	"linkmint/internal/models"
	"linkmint/internal/services"
)

type ClickHandler struct {
	Clicks      *services.ClickService
	Stats       *services.StatsService
	FallbackURL string
	ErrorLog    *log.Logger
}

// Redirect scores the click and always 302s the visitor somewhere: to the
// offer for a resolvable tracking code (valid or not), to the fallback page
// for an unknown one. Only internal storage failures surface as 500.
func (h *ClickHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	trackingCode := getParam(r, "trackingCode")
	if trackingCode == "" {
		http.Redirect(w, r, h.FallbackURL, http.StatusFound)
		return
	}

	q := r.URL.Query()
	fingerprint := optionalParam(q.Get("fp"))
	sessionID := optionalParam(q.Get("sid"))
	referrer := optionalParam(r.Referer())

	result, err := h.Clicks.TrackClick(r.Context(), trackingCode, clientIP(r), r.UserAgent(), fingerprint, referrer, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrTrackingNotFound) {
			http.Redirect(w, r, h.FallbackURL, http.StatusFound)
			return
		}
		if h.ErrorLog != nil {
			h.ErrorLog.Printf("click tracking failed for code %s: %v", trackingCode, err)
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

func (h *ClickHandler) AdoptionStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	adoptionID := getParam(r, "id")
	if adoptionID == "" {
		http.Error(w, "Missing adoption ID", http.StatusBadRequest)
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	stats, err := h.Stats.ClickStats(r.Context(), userID, adoptionID, days)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func optionalParam(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
