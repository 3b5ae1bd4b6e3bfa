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
	UpdateAppointmentStatus(ctx context.Context, id string, status string) (*api.AppointmentResponse, error)
}

type Request struct {
	api.AppointmentStatusRequest
}

type Response struct {
	response.Response
	Appointment api.AppointmentResponse `json:"appointment,omitempty"`
}

func New(log *slog.Logger, updater StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.status.New"

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

		appointment, err := updater.UpdateAppointmentStatus(r.Context(), id, req.Status)

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

		if errors.Is(err, response.ErrConflict) {
			log.Error("illegal status transition", slog.String("status", req.Status))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "status transition not allowed"))
			return
		}

		if err != nil {
			log.Error("Failed to update appointment status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update appointment status"))
			return
		}

		log.Info("Appointment status updated",
			slog.String("id", id),
			slog.String("status", appointment.Status),
		)

		render.JSON(w, r, Response{
			Appointment: *appointment,
		})
	}
}
