package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"civic-service/api"
	"civic-service/pkg/middleware/auth"
	"civic-service/pkg/response"
	"civic-service/pkg/sl"
)

type PostLister interface {
	ListPosts(ctx context.Context, userID string, category, priority *string) ([]*api.PostResponse, error)
}

type Response struct {
	response.Response
	Posts []api.PostResponse `json:"posts"`
}

func New(log *slog.Logger, lister PostLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		category := r.URL.Query().Get("category")
		priority := r.URL.Query().Get("priority")

		var categoryPtr, priorityPtr *string
		if category != "" {
			categoryPtr = &category
		}
		if priority != "" {
			priorityPtr = &priority
		}

		posts, err := lister.ListPosts(r.Context(), auth.UserID(r.Context()), categoryPtr, priorityPtr)

		if err != nil {
			log.Error("Failed to list posts", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list posts"))
			return
		}

		log.Info("Posts retrieved", slog.Int("count", len(posts)))

		list := make([]api.PostResponse, len(posts))
		for i, p := range posts {
			list[i] = *p
		}

		render.JSON(w, r, Response{Posts: list})
	}
}
