package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"civic-service/api"
	"civic-service/internal/availability"
	"civic-service/pkg/middleware/auth"
	"civic-service/pkg/response"
	"civic-service/pkg/sl"
)

type AppointmentGetter interface {
	GetAppointment(ctx context.Context, id string) (*api.AppointmentResponse, error)
	ListAppointments(ctx context.Context, userID, status *string, from, to *time.Time) ([]*api.AppointmentResponse, error)
}

type Response struct {
	response.Response
	Appointments []api.AppointmentResponse `json:"appointments,omitempty"`
	Appointment  *api.AppointmentResponse  `json:"appointment,omitempty"`
}

func New(log *slog.Logger, getter AppointmentGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if id != "" {
			appointment, err := getter.GetAppointment(r.Context(), id)

			if errors.Is(err, response.ErrNotFound) {
				log.Error("resource not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
				return
			}

			if err != nil {
				log.Error("Failed to get appointment", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get appointment"))
				return
			}

			// Regular users only see their own bookings.
			if auth.Role(r.Context()) != auth.RoleAdmin && appointment.UserID != auth.UserID(r.Context()) {
				log.Error("access denied to foreign appointment")
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(string(response.FORBIDDEN), "forbidden"))
				return
			}

			log.Info("Appointment retrieved", slog.String("id", appointment.ID))
			render.JSON(w, r, Response{Appointment: appointment})
			return
		}

		// List
		userID := r.URL.Query().Get("user_id")
		status := r.URL.Query().Get("status")
		fromStr := r.URL.Query().Get("from")
		toStr := r.URL.Query().Get("to")

		if auth.Role(r.Context()) != auth.RoleAdmin {
			userID = auth.UserID(r.Context())
		}

		var userIDPtr, statusPtr *string
		if userID != "" {
			userIDPtr = &userID
		}
		if status != "" {
			statusPtr = &status
		}

		var from, to *time.Time
		if fromStr != "" {
			if t, err := time.Parse(availability.DateLayout, fromStr); err == nil {
				from = &t
			}
		}
		if toStr != "" {
			if t, err := time.Parse(availability.DateLayout, toStr); err == nil {
				to = &t
			}
		}

		appointments, err := getter.ListAppointments(r.Context(), userIDPtr, statusPtr, from, to)

		if err != nil {
			log.Error("Failed to list appointments", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list appointments"))
			return
		}

		log.Info("Appointments retrieved", slog.Int("count", len(appointments)))

		list := make([]api.AppointmentResponse, len(appointments))
		for i, a := range appointments {
			list[i] = *a
		}

		render.JSON(w, r, Response{Appointments: list})
	}
}
