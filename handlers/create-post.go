package handlers

import (
	"net/http"
	"restblog/views"
)

func (h *HTTPHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	fields, err := readPostFields(r)
	if err != nil {
		h.Log.Warnf("Failed to parse post form: %s", err.Error())
		h.render(w, views.PageNew, &views.PageData{Title: "New Blog", Path: r.URL.Path})
		return
	}

	post, err := h.Storage.AddPost(r.Context(), h.Sanitizer.Apply(fields))
	if err != nil {
		h.Log.Errorf("Failed to create post: %s", err.Error())
		h.render(w, views.PageNew, &views.PageData{Title: "New Blog", Path: r.URL.Path})
		return
	}
	h.Log.Infof("Post created: id=%s", post.Id)
	h.redirect(w, r, postsPath)
}
