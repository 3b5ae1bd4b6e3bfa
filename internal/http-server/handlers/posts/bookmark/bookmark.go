package bookmark

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"civic-service/pkg/middleware/auth"
	"civic-service/pkg/response"
	"civic-service/pkg/sl"
)

type Bookmarker interface {
	SetBookmark(ctx context.Context, userID, postID string, bookmarked bool) error
}

// New handles both POST (bookmark) and DELETE (unbookmark) on the same
// route.
func New(log *slog.Logger, bookmarker Bookmarker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.bookmark.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		on := r.Method != http.MethodDelete

		err := bookmarker.SetBookmark(r.Context(), auth.UserID(r.Context()), id, on)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to set bookmark", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to set bookmark"))
			return
		}

		log.Info("Bookmark updated", slog.String("post_id", id), slog.Bool("bookmarked", on))

		w.WriteHeader(http.StatusNoContent)
	}
}
