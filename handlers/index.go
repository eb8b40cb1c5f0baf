package handlers

import "net/http"

func (h *HTTPHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.redirect(w, r, postsPath)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("pong"))
}
