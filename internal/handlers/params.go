package handlers

import "net/http"

// getParam returns a path or query parameter value regardless of whether the
// router stores it with a leading colon. Falls through to the net/http
// PathValue API so handlers stay router-agnostic in tests.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}

	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}

	if val := r.URL.Query().Get(name); val != "" {
		return val
	}

	return r.PathValue(name)
}
