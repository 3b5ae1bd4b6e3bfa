package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"civic-service/api"
	"civic-service/pkg/middleware/auth"
	"civic-service/pkg/response"
	"civic-service/pkg/sl"
)

type ConcernGetter interface {
	GetConcern(ctx context.Context, id string) (*api.ConcernResponse, error)
	ListConcerns(ctx context.Context, userID, status, category *string) ([]*api.ConcernResponse, error)
}

type Response struct {
	response.Response
	Concerns []api.ConcernResponse `json:"concerns,omitempty"`
	Concern  *api.ConcernResponse  `json:"concern,omitempty"`
}

func New(log *slog.Logger, getter ConcernGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.concerns.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if id != "" {
			concern, err := getter.GetConcern(r.Context(), id)

			if errors.Is(err, response.ErrNotFound) {
				log.Error("resource not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
				return
			}

			if err != nil {
				log.Error("Failed to get concern", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get concern"))
				return
			}

			if auth.Role(r.Context()) != auth.RoleAdmin && concern.UserID != auth.UserID(r.Context()) {
				log.Error("access denied to foreign concern")
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(string(response.FORBIDDEN), "forbidden"))
				return
			}

			log.Info("Concern retrieved", slog.String("id", concern.ID))
			render.JSON(w, r, Response{Concern: concern})
			return
		}

		// List: admins see everything, users only their own filings.
		userID := r.URL.Query().Get("user_id")
		status := r.URL.Query().Get("status")
		category := r.URL.Query().Get("category")

		if auth.Role(r.Context()) != auth.RoleAdmin {
			userID = auth.UserID(r.Context())
		}

		var userIDPtr, statusPtr, categoryPtr *string
		if userID != "" {
			userIDPtr = &userID
		}
		if status != "" {
			statusPtr = &status
		}
		if category != "" {
			categoryPtr = &category
		}

		concerns, err := getter.ListConcerns(r.Context(), userIDPtr, statusPtr, categoryPtr)

		if err != nil {
			log.Error("Failed to list concerns", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list concerns"))
			return
		}

		log.Info("Concerns retrieved", slog.Int("count", len(concerns)))

		list := make([]api.ConcernResponse, len(concerns))
		for i, c := range concerns {
			list[i] = *c
		}

		render.JSON(w, r, Response{Concerns: list})
	}
}
