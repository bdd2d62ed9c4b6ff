package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/handlers/render"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/service/catalog"
)

type sessionTypeRequest struct {
	Name     string          `json:"name" validate:"required,min=1,max=100"`
	Price    decimal.Decimal `json:"price" validate:"required"`
	Duration int             `json:"duration" validate:"omitempty,min=1,max=1440"`
}

type sessionTypeResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Duration  int             `json:"duration"`
	CreatedAt time.Time       `json:"created_at"`
}

func newSessionTypeResponse(st models.SessionType) sessionTypeResponse {
	return sessionTypeResponse{
		ID:        st.ID,
		Name:      st.Name,
		Price:     st.Price,
		Duration:  st.Duration,
		CreatedAt: st.CreatedAt,
	}
}

func handleCreateSessionType(catalogService catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[sessionTypeRequest](w, r)
		if err != nil {
			return
		}

		created, err := catalogService.Create(r.Context(), catalog.SessionTypeInput{
			Name:     data.Name,
			Price:    data.Price,
			Duration: data.Duration,
		})
		switch {
		case err == nil:
			render.JSONWithStatus(w, newSessionTypeResponse(created), http.StatusCreated)
		case errors.Is(err, apperrors.ErrSessionTypeAlreadyExists):
			render.ServiceError(w, "Session type with this name already exists", http.StatusConflict)
		default:
			l.Error("Failed to create session type", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListSessionTypes(catalogService catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionTypes, err := catalogService.List(r.Context())
		if err != nil {
			l.Error("Failed to list session types", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]sessionTypeResponse, 0, len(sessionTypes))
		for _, st := range sessionTypes {
			response = append(response, newSessionTypeResponse(st))
		}
		render.JSON(w, response)
	})
}

func handleGetSessionType(catalogService catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		st, err := catalogService.GetByID(r.Context(), id)
		switch {
		case err == nil:
			render.JSON(w, newSessionTypeResponse(st))
		case errors.Is(err, apperrors.ErrSessionTypeNotFound):
			render.ServiceError(w, "Session type not found", http.StatusNotFound)
		default:
			l.Error("Failed to get session type", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteSessionType(catalogService catalogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		err := catalogService.Delete(r.Context(), id)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrSessionTypeNotFound):
			render.ServiceError(w, "Session type not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete session type", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

// handleImportSessionTypes bulk-creates session types, skipping existing names
func handleImportSessionTypes(catalogService catalogService, l logger.Logger) http.Handler {
	type request struct {
		SessionTypes []sessionTypeRequest `json:"session_types" validate:"required,min=1,dive"`
	}
	type response struct {
		Created int `json:"created"`
		Skipped int `json:"skipped"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		inputs := make([]catalog.SessionTypeInput, 0, len(data.SessionTypes))
		for _, st := range data.SessionTypes {
			inputs = append(inputs, catalog.SessionTypeInput{
				Name:     st.Name,
				Price:    st.Price,
				Duration: st.Duration,
			})
		}

		created, err := catalogService.Import(r.Context(), inputs)
		if err != nil {
			l.Error("Failed to import session types", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Created: created, Skipped: len(inputs) - created})
	})
}
