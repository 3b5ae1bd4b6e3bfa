package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"civic-service/api"
	"civic-service/pkg/response"
	"civic-service/pkg/sl"
)

type StatusUpdater interface {
	UpdateConcernStatus(ctx context.Context, id, status string) (*api.ConcernResponse, error)
}

type Request struct {
	api.ConcernStatusRequest
}

type Response struct {
	response.Response
	Concern api.ConcernResponse `json:"concern,omitempty"`
}

func New(log *slog.Logger, updater StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.concerns.status.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		concern, err := updater.UpdateConcernStatus(r.Context(), id, req.Status)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("unknown status", slog.String("status", req.Status))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "unknown status"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to update concern status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update concern status"))
			return
		}

		log.Info("Concern status updated",
			slog.String("id", id),
			slog.String("status", concern.Status),
		)

		render.JSON(w, r, Response{
			Concern: *concern,
		})
	}
}
