package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"civic-service/api"
	"civic-service/pkg/response"
	"civic-service/pkg/sl"
)

type PostCreator interface {
	CreatePost(ctx context.Context, req *api.PostRequest) (*api.PostResponse, error)
}

type Request struct {
	api.PostRequest
}

type Response struct {
	response.Response
	Post api.PostResponse `json:"post,omitempty"`
}

func New(log *slog.Logger, creator PostCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.create.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		post, err := creator.CreatePost(r.Context(), &req.PostRequest)

		var vErr *response.ValidationError
		if errors.As(err, &vErr) {
			log.Info("Post failed validation", slog.Any("messages", vErr.Messages))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationFailed(vErr.Messages))
			return
		}

		if err != nil {
			log.Error("Failed to create post", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create post"))
			return
		}

		log.Info("Post created", slog.String("id", post.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Post: *post,
		})
	}
}
