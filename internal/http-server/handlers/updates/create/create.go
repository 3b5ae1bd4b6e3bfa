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

type UpdateCreator interface {
	CreateUpdate(ctx context.Context, req *api.UpdateRequest) (*api.UpdateResponse, error)
}

type Request struct {
	api.UpdateRequest
}

type Response struct {
	response.Response
	Update api.UpdateResponse `json:"update,omitempty"`
}

func New(log *slog.Logger, creator UpdateCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.updates.create.New"

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

		update, err := creator.CreateUpdate(r.Context(), &req.UpdateRequest)

		var vErr *response.ValidationError
		if errors.As(err, &vErr) {
			log.Info("Update failed validation", slog.Any("messages", vErr.Messages))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationFailed(vErr.Messages))
			return
		}

		if err != nil {
			log.Error("Failed to create update", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create update"))
			return
		}

		log.Info("Update created", slog.String("id", update.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Update: *update,
		})
	}
}
