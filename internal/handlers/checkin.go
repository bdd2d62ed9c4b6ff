package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/handlers/render"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/repository"
	"github.com/checkdesk/checkdesk/internal/service/checkin"
)

type checkInResponse struct {
	ID            uuid.UUID `json:"id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	SessionType   string    `json:"session_type"`
	CheckedInAt   time.Time `json:"checked_in_at"`
	Notes         string    `json:"notes,omitempty"`
	IsManual      bool      `json:"is_manual"`
	InvoiceID     *string   `json:"invoice_id"`
	BillingStatus string    `json:"billing_status"`
}

func newCheckInResponse(c models.CheckIn) checkInResponse {
	return checkInResponse{
		ID:            c.ID,
		CustomerID:    c.CustomerID,
		SessionType:   c.SessionType,
		CheckedInAt:   c.CheckedInAt,
		Notes:         c.Notes,
		IsManual:      c.IsManual,
		InvoiceID:     c.InvoiceID,
		BillingStatus: c.BillingStatus,
	}
}

func respondCheckIn(w http.ResponseWriter, l logger.Logger, recorded models.CheckIn, err error) {
	switch {
	case err == nil:
		render.JSONWithStatus(w, newCheckInResponse(recorded), http.StatusCreated)
	case errors.Is(err, apperrors.ErrCustomerNotFound):
		render.ServiceError(w, "Unknown QR pass", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrSessionTypeNotFound):
		render.ServiceError(w, "Session type not found", http.StatusNotFound)
	default:
		l.Error("Failed to record check-in", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func handleCheckIn(checkInService checkInService, l logger.Logger) http.Handler {
	type request struct {
		QRCodeValue   string    `json:"qr_code_value" validate:"required"`
		SessionTypeID uuid.UUID `json:"session_type_id" validate:"required"`
		Notes         string    `json:"notes" validate:"max=500"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		recorded, err := checkInService.Record(r.Context(), checkin.RecordInput{
			QRCodeValue:   data.QRCodeValue,
			SessionTypeID: data.SessionTypeID,
			Notes:         data.Notes,
		})
		respondCheckIn(w, l, recorded, err)
	})
}

// handleManualCheckIn records a staff-entered past session.
// checked_in_at drives the consolidation month of the billing side.
func handleManualCheckIn(checkInService checkInService, l logger.Logger) http.Handler {
	type request struct {
		QRCodeValue   string    `json:"qr_code_value" validate:"required"`
		SessionTypeID uuid.UUID `json:"session_type_id" validate:"required"`
		Notes         string    `json:"notes" validate:"max=500"`
		CheckedInAt   time.Time `json:"checked_in_at" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		recorded, err := checkInService.Record(r.Context(), checkin.RecordInput{
			QRCodeValue:   data.QRCodeValue,
			SessionTypeID: data.SessionTypeID,
			Notes:         data.Notes,
			ManualTime:    &data.CheckedInAt,
		})
		respondCheckIn(w, l, recorded, err)
	})
}

func handleListCheckIns(checkInService checkInService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opts := repository.ListCheckInsOpts{}

		if raw := r.URL.Query().Get("customer_id"); raw != "" {
			customerID, err := uuid.Parse(raw)
			if err != nil {
				render.ServiceError(w, "Invalid customer_id", http.StatusBadRequest)
				return
			}
			opts.CustomerID = customerID
		}
		if raw := r.URL.Query().Get("billing_status"); raw != "" {
			opts.BillingStatuses = []string{raw}
		}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				render.ServiceError(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			opts.Limit = limit
		}

		checkIns, err := checkInService.List(r.Context(), opts)
		if err != nil {
			l.Error("Failed to list check-ins", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]checkInResponse, 0, len(checkIns))
		for _, c := range checkIns {
			response = append(response, newCheckInResponse(c))
		}
		render.JSON(w, response)
	})
}
