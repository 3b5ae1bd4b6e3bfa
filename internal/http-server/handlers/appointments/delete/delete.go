package delete

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

type AppointmentDeleter interface {
	GetAppointment(ctx context.Context, id string) (*api.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter AppointmentDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.delete.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		appointment, err := deleter.GetAppointment(r.Context(), id)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to get appointment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete appointment"))
			return
		}

		// Owners can clear their own history; admins anything.
		if auth.Role(r.Context()) != auth.RoleAdmin && appointment.UserID != auth.UserID(r.Context()) {
			log.Error("access denied to foreign appointment")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.FORBIDDEN), "forbidden"))
			return
		}

		if err := deleter.DeleteAppointment(r.Context(), id); err != nil {
			log.Error("Failed to delete appointment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete appointment"))
			return
		}

		log.Info("Appointment deleted", slog.String("id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
