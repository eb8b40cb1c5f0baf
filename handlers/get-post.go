package handlers

import (
	"net/http"
	"restblog/views"
)

func (h *HTTPHandler) HandleShowPost(w http.ResponseWriter, r *http.Request) {
	postId := postIdFromRequest(r)
	post, err := h.Storage.GetPost(r.Context(), postId)
	if err != nil {
		h.logStorageError("showing", postId, err)
		h.redirect(w, r, postsPath)
		return
	}
	h.render(w, views.PageShow, &views.PageData{Title: post.Title, Path: r.URL.Path, Post: &post})
}

func (h *HTTPHandler) HandleEditPost(w http.ResponseWriter, r *http.Request) {
	postId := postIdFromRequest(r)
	post, err := h.Storage.GetPost(r.Context(), postId)
	if err != nil {
		h.logStorageError("editing", postId, err)
		h.redirect(w, r, postsPath)
		return
	}
	h.render(w, views.PageEdit, &views.PageData{Title: "Edit " + post.Title, Path: r.URL.Path, Post: &post})
}
