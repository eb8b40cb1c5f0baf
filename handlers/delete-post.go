package handlers

import (
	"errors"
	"net/http"
	"restblog/storage"
)

func (h *HTTPHandler) deleteFailurePath(postId string) string {
	if h.DeleteFailure == RedirectToLiteral {
		return postPath(":id")
	}
	return postPath(postId)
}

func (h *HTTPHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	postId := postIdFromRequest(r)
	err := h.Storage.DeletePost(r.Context(), postId)
	if err != nil {
		h.logStorageError("deleting", postId, err)
		// Already gone counts as deleted.
		if errors.Is(err, storage.NotFoundError) {
			h.redirect(w, r, postsPath)
			return
		}
		h.redirect(w, r, h.deleteFailurePath(postId))
		return
	}
	h.Log.Infof("Post deleted: id=%s", postId)
	h.redirect(w, r, postsPath)
}
