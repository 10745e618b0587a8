package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"inkwell/internal/platform/logger"
	"inkwell/internal/post/handler/mocks"
	"inkwell/internal/post/models"
	"inkwell/internal/post/service"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/requestcontext"
	"inkwell/pkg/richtext"
	"inkwell/pkg/testutil"
)

type PostHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	userID  id.UserID
	view    *models.PostView
}

func TestPostHandlerSuite(t *testing.T) {
	suite.Run(t, new(PostHandlerSuite))
}

// requireUser stands in for the JWT middleware: tests inject the user
// with testutil.WithUserID.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestcontext.UserID(r.Context()).IsNil() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func passThrough(next http.Handler) http.Handler { return next }

func (s *PostHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, logger.Discard(), requireUser, passThrough)
	s.router = chi.NewRouter()
	h.Register(s.router)
	s.userID = id.NewUserID()

	doc := richtext.NewDocument(
		richtext.HeadingNode(2, richtext.TextNode("Intro")),
		richtext.Paragraph(richtext.TextNode("Hello "), richtext.TextNode("world", richtext.Mark{Type: "bold"})),
	)
	post, err := models.NewPost(id.NewPostID(), s.userID, "Hello World", "hello-world", doc, true,
		time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	view, err := models.NewPostView(post, models.Author{ID: s.userID, Name: "Ada"})
	s.Require().NoError(err)
	s.view = &view
}

func (s *PostHandlerSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *PostHandlerSuite) TestCreate() {
	s.Run("requires authentication", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/editor/content", map[string]any{"title": "x"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("passes raw content through", func() {
		s.service.EXPECT().Create(gomock.Any(), s.userID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ id.UserID, in service.CreateInput) (*models.PostView, error) {
				s.Equal("Hello World", in.Title)
				s.JSONEq(`{"type":"doc","content":[]}`, string(in.Content))
				s.Equal([]string{"go"}, in.Tags)
				s.True(in.Published)
				return s.view, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/editor/content", map[string]any{
			"title":     "  Hello World ",
			"content":   map[string]any{"type": "doc", "content": []any{}},
			"published": true,
			"tags":      []string{"go"},
		})
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		got := testutil.UnmarshalData[models.PostView](s.T(), rr)
		s.Equal("hello-world", got.Slug)
		testutil.AssertJSONContains(s.T(), rr, "message", "Content created successfully")
	})

	s.Run("blank title never reaches the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/editor/content", map[string]any{"title": "  "})
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal([]string{"title is required"}, body.Fields["title"])
	})

	s.Run("document errors are reported by path", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil,
			dErrors.WithFields("content is not a valid document", map[string][]string{
				"content.content[0].type": {"is required"},
			}))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/editor/content", map[string]any{
			"title":   "Hello",
			"content": map[string]any{"type": "doc", "content": []any{map[string]any{}}},
		})
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal([]string{"is required"}, body.Fields["content.content[0].type"])
	})
}

func (s *PostHandlerSuite) TestList() {
	s.Run("parses and clamps query", func() {
		author := id.NewUserID()
		s.service.EXPECT().List(gomock.Any(), id.UserID{}, service.ListParams{
			Pagination:    models.Pagination{Page: 1, Limit: 100},
			AuthorID:      &author,
			PublishedOnly: true,
		}).Return(&service.ListResult{Items: []models.PostSummary{}, Metadata: models.Page{Page: 1, Limit: 100}}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet,
			"/api/editor/content?page=-3&limit=1000&publishedOnly=true&authorId="+author.String())
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		got := testutil.UnmarshalData[service.ListResult](s.T(), rr)
		s.Equal(100, got.Metadata.Limit)
	})

	s.Run("malformed author id is rejected", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/editor/content?authorId=nope")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("signed-in viewer is forwarded", func() {
		s.service.EXPECT().List(gomock.Any(), s.userID, gomock.Any()).
			Return(&service.ListResult{Items: []models.PostSummary{}}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/editor/content")
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))
		testutil.AssertStatusOK(s.T(), rr)
	})
}

func (s *PostHandlerSuite) TestListPublished() {
	s.service.EXPECT().ListPublished(gomock.Any(), service.PublicListParams{
		Pagination: models.Pagination{Page: 2, Limit: 10},
		Tag:        "go",
		Query:      "chan",
		SortBy:     models.SortByCreatedAt,
		SortOrder:  models.SortAsc,
	}).Return(&service.ListResult{
		Items:    []models.PostSummary{s.view.PostSummary},
		Metadata: models.Page{Total: 11, Page: 2, Limit: 10, TotalPages: 2, HasPrevious: true},
	}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/api/blog/posts?page=2&limit=abc&tag=go&q=chan&sortBy=views&sortOrder=asc")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	var env struct {
		Data struct {
			Items    []json.RawMessage `json:"items"`
			Metadata map[string]any    `json:"metadata"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &env))
	s.Len(env.Data.Items, 1)
	s.Equal(true, env.Data.Metadata["hasPrevious"])
	s.Equal(float64(2), env.Data.Metadata["totalPages"])
}

func (s *PostHandlerSuite) TestGetBySlugRendersHTML() {
	s.service.EXPECT().GetBySlug(gomock.Any(), id.UserID{}, "hello-world").Return(s.view, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/blog/posts/hello-world"))

	testutil.AssertStatusOK(s.T(), rr)
	got := testutil.UnmarshalData[models.PostView](s.T(), rr)
	s.Equal([]richtext.Heading{{Level: 2, Text: "Intro", Slug: "intro"}}, got.Outline)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(got.HTML))
	s.Require().NoError(err)
	s.Equal("Intro", doc.Find("h2#intro").Text())
	s.Equal("world", doc.Find("p strong").Text())
	s.Equal("Hello world", doc.Find("p").First().Text())
}

func (s *PostHandlerSuite) TestGetBySlugNotFound() {
	s.service.EXPECT().GetBySlug(gomock.Any(), gomock.Any(), "missing").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "post not found"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/blog/posts/missing"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *PostHandlerSuite) TestMarkdown() {
	s.service.EXPECT().ExportMarkdown(gomock.Any(), gomock.Any(), "hello-world").
		Return("# Hello World\n\n## Intro\n", nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/blog/posts/hello-world/markdown"))

	testutil.AssertStatusOK(s.T(), rr)
	s.Equal("text/markdown; charset=utf-8", rr.Header().Get("Content-Type"))
	s.Contains(rr.Header().Get("Content-Disposition"), `filename="hello-world.md"`)
	s.Equal("# Hello World\n\n## Intro\n", rr.Body.String())
}

func (s *PostHandlerSuite) TestUpdate() {
	s.Run("forwards partial update", func() {
		s.service.EXPECT().Update(gomock.Any(), s.userID, s.view.ID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ id.UserID, _ id.PostID, in service.UpdateInput) (*models.PostView, error) {
				s.Require().NotNil(in.Title)
				s.Equal("New", *in.Title)
				s.Nil(in.Published)
				s.Nil(in.Tags)
				s.Empty(in.Content)
				return s.view, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/editor/content/"+s.view.ID.String(), map[string]any{"title": " New "})
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("empty body is a validation error", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/editor/content/"+s.view.ID.String(), map[string]any{})
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("bad id is invalid input", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/editor/content/not-a-uuid", map[string]any{"title": "x"})
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("forbidden maps to 403", func() {
		s.service.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "only the author can change this post"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/editor/content/"+s.view.ID.String(), map[string]any{"published": true})
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})
}

func (s *PostHandlerSuite) TestDelete() {
	s.service.EXPECT().Delete(gomock.Any(), s.userID, s.view.ID).Return(nil)

	req := testutil.NewRequest(s.T(), http.MethodDelete, "/api/editor/content/"+s.view.ID.String())
	rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *PostHandlerSuite) TestComments() {
	s.Run("anyone can list", func() {
		s.service.EXPECT().ListComments(gomock.Any(), "hello-world").Return([]models.CommentView{}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/blog/posts/hello-world/comments"))
		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`[]`, string(testutil.UnmarshalData[json.RawMessage](s.T(), rr)))
	})

	s.Run("adding requires sign-in", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/blog/posts/hello-world/comments", map[string]string{"content": "hi"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("adds trimmed comment", func() {
		s.service.EXPECT().AddComment(gomock.Any(), s.userID, "hello-world", "hi there").
			Return(&models.CommentView{ID: id.NewCommentID(), Content: "hi there"}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/blog/posts/hello-world/comments", map[string]string{"content": "  hi there "})
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	})

	s.Run("oversized comment is rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/blog/posts/hello-world/comments",
			map[string]string{"content": strings.Repeat("x", models.MaxCommentLength*4+1)})
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("delete by id", func() {
		commentID := id.NewCommentID()
		s.service.EXPECT().DeleteComment(gomock.Any(), s.userID, commentID).Return(nil)

		req := testutil.NewRequest(s.T(), http.MethodDelete, "/api/blog/comments/"+commentID.String())
		rr := testutil.DoRequest(s.router, testutil.WithUserID(req, s.userID))
		testutil.AssertStatusOK(s.T(), rr)
	})
}

func (s *PostHandlerSuite) TestTags() {
	s.service.EXPECT().Tags(gomock.Any()).Return([]models.Tag{{ID: id.NewTagID(), Name: "go"}}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/blog/tags"))
	testutil.AssertStatusOK(s.T(), rr)
	tags := testutil.UnmarshalData[[]models.Tag](s.T(), rr)
	s.Require().Len(tags, 1)
	s.Equal("go", tags[0].Name)
}
