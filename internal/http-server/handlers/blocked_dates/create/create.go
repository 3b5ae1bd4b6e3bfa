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

type BlockedDateCreator interface {
	CreateBlockedDate(ctx context.Context, req *api.BlockedDateRequest) (*api.BlockedDateResponse, error)
}

type Request struct {
	api.BlockedDateRequest
}

type Response struct {
	response.Response
	BlockedDate api.BlockedDateResponse `json:"blocked_date,omitempty"`
}

func New(log *slog.Logger, creator BlockedDateCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.blocked_dates.create.New"

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

		blockedDate, err := creator.CreateBlockedDate(r.Context(), &req.BlockedDateRequest)

		var vErr *response.ValidationError
		if errors.As(err, &vErr) {
			log.Info("Blocked date failed validation", slog.Any("messages", vErr.Messages))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationFailed(vErr.Messages))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("date is already blocked")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "date is already blocked"))
			return
		}

		if err != nil {
			log.Error("Failed to create blocked date", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create blocked date"))
			return
		}

		log.Info("Blocked date created", slog.String("date", blockedDate.Date))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			BlockedDate: *blockedDate,
		})
	}
}
