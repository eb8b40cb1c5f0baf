package handlers

import (
	"net/http"
	"restblog/views"
)

// HandleListPosts never shows an error page: a failed fetch renders the list without posts.
func (h *HTTPHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Storage.ListPosts(r.Context())
	if err != nil {
		h.Log.Errorf("Failed to list posts: %s", err.Error())
		posts = nil
	}
	h.render(w, views.PageIndex, &views.PageData{Path: r.URL.Path, Posts: posts})
}
