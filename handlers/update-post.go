package handlers

import (
	"net/http"
)

func (h *HTTPHandler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	postId := postIdFromRequest(r)
	fields, err := readPostFields(r)
	if err != nil {
		h.Log.Warnf("Failed to parse post form while updating post %q: %s", postId, err.Error())
		h.redirect(w, r, postsPath)
		return
	}

	_, err = h.Storage.UpdatePost(r.Context(), postId, h.Sanitizer.Apply(fields))
	if err != nil {
		h.logStorageError("updating", postId, err)
		h.redirect(w, r, postsPath)
		return
	}
	h.redirect(w, r, postPath(postId))
}
