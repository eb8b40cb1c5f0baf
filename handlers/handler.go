package handlers

import (
	"errors"
	"net/http"
	"restblog/sanitize"
	"restblog/storage"
	"restblog/storage/models"
	"restblog/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	INTERNAL_ERROR_MESSAGE = "Internal server error"

	postsPath = "/posts"
)

type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data *views.PageData) error
}

type DeleteFailureRedirect string

const (
	// RedirectToPost sends the client back to the post that could not be deleted.
	RedirectToPost DeleteFailureRedirect = "post"
	// RedirectToLiteral sends the client to the literal "/posts/:id" path, as the first version of the blog did.
	RedirectToLiteral DeleteFailureRedirect = "literal"
)

type HTTPHandler struct {
	Storage       storage.Storage
	Sanitizer     *sanitize.Policy
	Views         Renderer
	Log           *zap.SugaredLogger
	DeleteFailure DeleteFailureRedirect
}

func postPath(postId string) string {
	return postsPath + "/" + postId
}

func postIdFromRequest(r *http.Request) string {
	return mux.Vars(r)["postId"]
}

// formValue reads a flat field name and falls back to the nested blog[name] form the original forms posted.
func formValue(r *http.Request, name string) string {
	if values, found := r.PostForm[name]; found && len(values) > 0 {
		return values[0]
	}
	return r.PostForm.Get("blog[" + name + "]")
}

func readPostFields(r *http.Request) (models.PostFields, error) {
	if err := r.ParseForm(); err != nil {
		return models.PostFields{}, err
	}
	return models.PostFields{
		Title: formValue(r, "title"),
		Image: formValue(r, "image"),
		Body:  formValue(r, "body"),
	}, nil
}

func (h *HTTPHandler) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusFound)
}

func (h *HTTPHandler) render(w http.ResponseWriter, page string, data *views.PageData) {
	err := h.Views.Render(w, http.StatusOK, page, data)
	if err != nil {
		h.Log.Errorf("Failed to render %s page: %s", page, err.Error())
		http.Error(w, INTERNAL_ERROR_MESSAGE, http.StatusInternalServerError)
	}
}

func (h *HTTPHandler) logStorageError(action, postId string, err error) {
	if errors.Is(err, storage.NotFoundError) {
		h.Log.Infof("Post %q not found while %s: %s", postId, action, err.Error())
		return
	}
	if errors.Is(err, storage.ClientError) {
		h.Log.Warnf("Client error while %s post %q: %s", action, postId, err.Error())
		return
	}
	h.Log.Errorf("Internal error while %s post %q: %s", action, postId, err.Error())
}
