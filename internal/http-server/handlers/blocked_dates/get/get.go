package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"civic-service/api"
	"civic-service/pkg/response"
	"civic-service/pkg/sl"
)

type BlockedDateLister interface {
	ListBlockedDates(ctx context.Context) ([]*api.BlockedDateResponse, error)
}

type Response struct {
	response.Response
	BlockedDates []api.BlockedDateResponse `json:"blocked_dates"`
}

func New(log *slog.Logger, lister BlockedDateLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.blocked_dates.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		blockedDates, err := lister.ListBlockedDates(r.Context())

		if err != nil {
			log.Error("Failed to list blocked dates", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list blocked dates"))
			return
		}

		log.Info("Blocked dates retrieved", slog.Int("count", len(blockedDates)))

		list := make([]api.BlockedDateResponse, len(blockedDates))
		for i, b := range blockedDates {
			list[i] = *b
		}

		render.JSON(w, r, Response{BlockedDates: list})
	}
}
