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

type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, userID string, req *api.AppointmentRequest) (*api.AppointmentResponse, error)
}

type Request struct {
	api.AppointmentRequest
}

type Response struct {
	response.Response
	Appointment api.AppointmentResponse `json:"appointment,omitempty"`
}

func New(log *slog.Logger, creator AppointmentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.create.New"

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

		userID := auth.UserID(r.Context())

		appointment, err := creator.CreateAppointment(r.Context(), userID, &req.AppointmentRequest)

		var vErr *response.ValidationError
		if errors.As(err, &vErr) {
			log.Info("Draft failed validation", slog.Any("messages", vErr.Messages))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationFailed(vErr.Messages))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("date is locked by another booking")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "date is locked, try again"))
			return
		}

		if errors.Is(err, response.ErrDateNotBookable) {
			log.Error("date is not bookable")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.DATE_NOT_BOOKABLE), "date is not available for booking"))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("user already has an appointment on this date")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "an appointment already exists on this date"))
			return
		}

		if err != nil {
			log.Error("Failed to create appointment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create appointment"))
			return
		}

		log.Info("Appointment created", slog.String("id", appointment.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Appointment: *appointment,
		})
	}
}
