package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"restblog/sanitize"
	"restblog/storage"
	"restblog/storage/in_memory"
	"restblog/storage/models"
	"restblog/views"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// failingStorage answers every call with an internal error.
type failingStorage struct{}

func (failingStorage) ListPosts(context.Context) ([]models.Post, error) {
	return nil, fmt.Errorf("list: %w", storage.InternalError)
}

func (failingStorage) GetPost(context.Context, string) (models.Post, error) {
	return models.Post{}, fmt.Errorf("get: %w", storage.InternalError)
}

func (failingStorage) AddPost(context.Context, models.PostFields) (models.Post, error) {
	return models.Post{}, fmt.Errorf("add: %w", storage.InternalError)
}

func (failingStorage) UpdatePost(context.Context, string, models.PostFields) (models.Post, error) {
	return models.Post{}, fmt.Errorf("update: %w", storage.InternalError)
}

func (failingStorage) DeletePost(context.Context, string) error {
	return fmt.Errorf("delete: %w", storage.InternalError)
}

func TestHandlers(t *testing.T) {
	suite.Run(t, &HandlersSuite{})
}

type HandlersSuite struct {
	suite.Suite

	storage storage.Storage
	handler *HTTPHandler
	router  http.Handler
}

func (s *HandlersSuite) newHandler(st storage.Storage) *HTTPHandler {
	policy, err := sanitize.NewPolicy(sanitize.DefaultFields)
	s.Require().NoError(err)
	renderer, err := views.NewRenderer(true)
	s.Require().NoError(err)
	return &HTTPHandler{
		Storage:       st,
		Sanitizer:     policy,
		Views:         renderer,
		Log:           zap.NewNop().Sugar(),
		DeleteFailure: RedirectToPost,
	}
}

func (s *HandlersSuite) SetupTest() {
	s.storage = in_memory.CreateInMemoryStorage()
	s.handler = s.newHandler(s.storage)
	s.router = NewRouter(s.handler)
}

func (s *HandlersSuite) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlersSuite) requireRedirect(rec *httptest.ResponseRecorder, location string) {
	s.Require().Equal(http.StatusFound, rec.Code)
	s.Require().Equal(location, rec.Header().Get("Location"))
}

func (s *HandlersSuite) onlyPost() models.Post {
	posts, err := s.storage.ListPosts(context.Background())
	s.Require().NoError(err)
	s.Require().Len(posts, 1)
	return posts[0]
}

func (s *HandlersSuite) TestRootRedirectsToList() {
	s.requireRedirect(s.do(http.MethodGet, "/", nil), "/posts")
}

func (s *HandlersSuite) TestHealthCheck() {
	rec := s.do(http.MethodGet, "/maintenance/ping", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("pong", rec.Body.String())
}

func (s *HandlersSuite) TestNewForm() {
	rec := s.do(http.MethodGet, "/posts/new", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Contains(rec.Body.String(), `action="/posts" method="POST"`)
}

func (s *HandlersSuite) TestCreateSanitizesBodyOnly() {
	before := time.Now().UTC()
	rec := s.do(http.MethodPost, "/posts", url.Values{
		"title": {"<i>Title</i>"},
		"image": {"http://example.com/a.png"},
		"body":  {"Hi<script>x</script>"},
	})
	s.requireRedirect(rec, "/posts")

	post := s.onlyPost()
	s.Require().NotEmpty(post.Id)
	s.Require().False(post.Created.Before(before))
	s.Require().Equal("<i>Title</i>", post.Title)
	s.Require().Equal("http://example.com/a.png", post.Image)
	s.Require().Equal("Hi", post.Body)

	list := s.do(http.MethodGet, "/posts", nil)
	s.Require().Equal(http.StatusOK, list.Code)
	s.Require().Contains(list.Body.String(), "/posts/"+post.Id)

	show := s.do(http.MethodGet, "/posts/"+post.Id, nil)
	s.Require().Equal(http.StatusOK, show.Code)
	s.Require().NotContains(show.Body.String(), "<script>x</script>")
}

func (s *HandlersSuite) TestCreateAcceptsNestedFieldNames() {
	rec := s.do(http.MethodPost, "/posts", url.Values{
		"blog[title]": {"Nested"},
		"blog[image]": {"n.png"},
		"blog[body]":  {"nested body"},
	})
	s.requireRedirect(rec, "/posts")
	s.Require().Equal(models.PostFields{Title: "Nested", Image: "n.png", Body: "nested body"}, s.onlyPost().Fields())
}

func (s *HandlersSuite) TestMissingPostRedirectsToList() {
	s.requireRedirect(s.do(http.MethodGet, "/posts/unknown", nil), "/posts")
	s.requireRedirect(s.do(http.MethodGet, "/posts/unknown/edit", nil), "/posts")
	s.requireRedirect(s.do(http.MethodPut, "/posts/unknown", url.Values{"title": {"x"}}), "/posts")
}

func (s *HandlersSuite) TestEditForm() {
	post, err := s.storage.AddPost(context.Background(), models.PostFields{Title: "Editable"})
	s.Require().NoError(err)

	rec := s.do(http.MethodGet, "/posts/"+post.Id+"/edit", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Contains(rec.Body.String(), `value="Editable"`)
}

func (s *HandlersSuite) TestUpdateKeepsCreated() {
	post, err := s.storage.AddPost(context.Background(), models.PostFields{Title: "old", Image: "old.png", Body: "old"})
	s.Require().NoError(err)

	rec := s.do(http.MethodPost, "/posts/"+post.Id+"?_method=PUT", url.Values{
		"title": {"new"},
		"image": {"new.png"},
		"body":  {"<b>new</b><script>evil()</script>"},
	})
	s.requireRedirect(rec, "/posts/"+post.Id)

	updated, err := s.storage.GetPost(context.Background(), post.Id)
	s.Require().NoError(err)
	s.Require().Equal(models.PostFields{Title: "new", Image: "new.png", Body: "<b>new</b>"}, updated.Fields())
	s.Require().Equal(post.Created, updated.Created)
}

func (s *HandlersSuite) TestDeleteThroughForm() {
	post, err := s.storage.AddPost(context.Background(), models.PostFields{Title: "bye"})
	s.Require().NoError(err)

	rec := s.do(http.MethodPost, "/posts/"+post.Id, url.Values{"_method": {"DELETE"}})
	s.requireRedirect(rec, "/posts")

	s.requireRedirect(s.do(http.MethodGet, "/posts/"+post.Id, nil), "/posts")
}

func (s *HandlersSuite) TestDeleteMissingCountsAsDeleted() {
	s.requireRedirect(s.do(http.MethodDelete, "/posts/unknown", nil), "/posts")
}

func (s *HandlersSuite) TestStorageFailures() {
	s.router = NewRouter(s.newHandler(failingStorage{}))

	list := s.do(http.MethodGet, "/posts", nil)
	s.Require().Equal(http.StatusOK, list.Code)
	s.Require().Contains(list.Body.String(), "No posts yet.")
	s.Require().NotContains(list.Body.String(), "storage internal error")

	create := s.do(http.MethodPost, "/posts", url.Values{"title": {"lost"}})
	s.Require().Equal(http.StatusOK, create.Code)
	s.Require().Contains(create.Body.String(), `action="/posts" method="POST"`)
	s.Require().NotContains(create.Body.String(), "lost")

	s.requireRedirect(s.do(http.MethodGet, "/posts/abc", nil), "/posts")
	s.requireRedirect(s.do(http.MethodPut, "/posts/abc", url.Values{"title": {"x"}}), "/posts")
	s.requireRedirect(s.do(http.MethodDelete, "/posts/abc", nil), "/posts/abc")
}

func (s *HandlersSuite) TestCreateFailureLogMessage() {
	core, logs := observer.New(zapcore.InfoLevel)
	h := s.newHandler(failingStorage{})
	h.Log = zap.New(core).Sugar()
	s.router = NewRouter(h)

	s.do(http.MethodPost, "/posts", url.Values{"title": {"t"}})

	errorsLogged := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	s.Require().Len(errorsLogged, 1)
	s.Require().True(strings.HasPrefix(errorsLogged[0].Message, "Failed to create post: "))
	s.Require().NotContains(errorsLogged[0].Message, `post ""`)
}

func (s *HandlersSuite) TestLiteralDeleteFailureRedirect() {
	h := s.newHandler(failingStorage{})
	h.DeleteFailure = RedirectToLiteral
	s.router = NewRouter(h)

	s.requireRedirect(s.do(http.MethodDelete, "/posts/abc", nil), "/posts/:id")
}

func (s *HandlersSuite) TestStaticAssets() {
	rec := s.do(http.MethodGet, "/static/app.css", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
}

func TestMethodOverride(t *testing.T) {
	var seen string
	h := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Method
	}))

	cases := []struct {
		name   string
		req    func() *http.Request
		method string
	}{
		{"query", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/posts/1?_method=put", nil)
		}, http.MethodPut},
		{"header", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/posts/1", nil)
			r.Header.Set("X-HTTP-Method-Override", "DELETE")
			return r
		}, http.MethodDelete},
		{"form", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/posts/1", strings.NewReader("_method=DELETE"))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return r
		}, http.MethodDelete},
		{"unsupported", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/posts/1?_method=CONNECT", nil)
		}, http.MethodPost},
		{"get untouched", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/posts/1?_method=DELETE", nil)
		}, http.MethodGet},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h.ServeHTTP(httptest.NewRecorder(), c.req())
			if seen != c.method {
				t.Fatalf("expected %s, got %s", c.method, seen)
			}
		})
	}
}
