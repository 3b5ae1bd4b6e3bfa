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

type UpdateLister interface {
	ListUpdates(ctx context.Context, userID string) ([]*api.UpdateResponse, error)
}

type Response struct {
	response.Response
	Updates []api.UpdateResponse `json:"updates"`
}

func New(log *slog.Logger, lister UpdateLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.updates.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		updates, err := lister.ListUpdates(r.Context(), auth.UserID(r.Context()))

		if err != nil {
			log.Error("Failed to list updates", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list updates"))
			return
		}

		log.Info("Updates retrieved", slog.Int("count", len(updates)))

		list := make([]api.UpdateResponse, len(updates))
		for i, u := range updates {
			list[i] = *u
		}

		render.JSON(w, r, Response{Updates: list})
	}
}
