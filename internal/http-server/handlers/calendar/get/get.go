package get

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

type CalendarBuilder interface {
	Calendar(ctx context.Context, userID, mode, cursor string) (*api.CalendarResponse, error)
}

type Response struct {
	response.Response
	Calendar *api.CalendarResponse `json:"calendar,omitempty"`
}

func New(log *slog.Logger, builder CalendarBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.calendar.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		mode := r.URL.Query().Get("mode")
		if mode == "" {
			mode = "week"
		}
		cursor := r.URL.Query().Get("cursor")

		calendar, err := builder.Calendar(r.Context(), auth.UserID(r.Context()), mode, cursor)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("unknown calendar mode", slog.String("mode", mode))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "mode must be week or month"))
			return
		}

		if err != nil {
			log.Error("Failed to build calendar", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to build calendar"))
			return
		}

		log.Info("Calendar built",
			slog.String("mode", calendar.Mode),
			slog.Int("days", len(calendar.Days)),
		)

		render.JSON(w, r, Response{Calendar: calendar})
	}
}
