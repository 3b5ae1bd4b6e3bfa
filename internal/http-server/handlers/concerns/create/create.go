package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"civic-service/api"
	"civic-service/pkg/middleware/auth"
	"civic-service/pkg/response"
	"civic-service/pkg/sl"
)

type ConcernCreator interface {
	CreateConcern(ctx context.Context, userID string, req *api.ConcernRequest) (*api.ConcernResponse, error)
}

type Request struct {
	api.ConcernRequest
}

type Response struct {
	response.Response
	Concern api.ConcernResponse `json:"concern,omitempty"`
}

func New(log *slog.Logger, creator ConcernCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.concerns.create.New"

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

		concern, err := creator.CreateConcern(r.Context(), auth.UserID(r.Context()), &req.ConcernRequest)

		var vErr *response.ValidationError
		if errors.As(err, &vErr) {
			log.Info("Concern failed validation", slog.Any("messages", vErr.Messages))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationFailed(vErr.Messages))
			return
		}

		if err != nil {
			log.Error("Failed to create concern", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create concern"))
			return
		}

		log.Info("Concern created", slog.String("id", concern.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Concern: *concern,
		})
	}
}
