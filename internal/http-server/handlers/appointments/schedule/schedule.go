package schedule

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

type AppointmentScheduler interface {
	ScheduleAppointment(ctx context.Context, id string, req *api.AppointmentScheduleRequest) (*api.AppointmentResponse, error)
}

type Request struct {
	api.AppointmentScheduleRequest
}

type Response struct {
	response.Response
	Appointment api.AppointmentResponse `json:"appointment,omitempty"`
}

func New(log *slog.Logger, scheduler AppointmentScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.schedule.New"

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

		appointment, err := scheduler.ScheduleAppointment(r.Context(), id, &req.AppointmentScheduleRequest)

		var vErr *response.ValidationError
		if errors.As(err, &vErr) {
			log.Info("Schedule failed validation", slog.Any("messages", vErr.Messages))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationFailed(vErr.Messages))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("appointment is not a courtesy request")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "only courtesy appointments can be scheduled"))
			return
		}

		if errors.Is(err, response.ErrDateNotBookable) {
			log.Error("date is not bookable")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.DATE_NOT_BOOKABLE), "date is not available for booking"))
			return
		}

		if err != nil {
			log.Error("Failed to schedule appointment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to schedule appointment"))
			return
		}

		log.Info("Appointment scheduled",
			slog.String("id", id),
			slog.String("date", appointment.Date),
		)

		render.JSON(w, r, Response{
			Appointment: *appointment,
		})
	}
}
