package handlers

import (
	"net/http"
	"restblog/views"
)

func (h *HTTPHandler) HandleNewPost(w http.ResponseWriter, r *http.Request) {
	h.render(w, views.PageNew, &views.PageData{Title: "New Blog", Path: r.URL.Path})
}
