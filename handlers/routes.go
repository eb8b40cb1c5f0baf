package handlers

import (
	"net/http"
	"restblog/views"

	"github.com/gorilla/mux"
)

// NewRouter registers the blog routes. The returned handler applies method override before routing.
func NewRouter(h *HTTPHandler) http.Handler {
	r := mux.NewRouter()
	r.Use(RequestLogger(h.Log))

	r.HandleFunc("/maintenance/ping", h.HealthCheck).Methods("GET")
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static", views.StaticHandler())).Methods("GET")

	r.HandleFunc("/", h.HandleIndex).Methods("GET")
	r.HandleFunc("/posts", h.HandleListPosts).Methods("GET")
	r.HandleFunc("/posts/new", h.HandleNewPost).Methods("GET")
	r.HandleFunc("/posts", h.HandleCreatePost).Methods("POST")
	r.HandleFunc("/posts/{postId}", h.HandleShowPost).Methods("GET")
	r.HandleFunc("/posts/{postId}/edit", h.HandleEditPost).Methods("GET")
	r.HandleFunc("/posts/{postId}", h.HandleUpdatePost).Methods("PUT")
	r.HandleFunc("/posts/{postId}", h.HandleDeletePost).Methods("DELETE")

	return MethodOverride(r)
}
