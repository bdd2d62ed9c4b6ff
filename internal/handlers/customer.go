package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/handlers/render"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/service/customer"
)

type customerResponse struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	CustomerType string    `json:"customer_type"`
	QRCodeValue  string    `json:"qr_code_value"`
	CreatedAt    time.Time `json:"created_at"`
}

func newCustomerResponse(c models.Customer) customerResponse {
	return customerResponse{
		ID:           c.ID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		CustomerType: c.CustomerType,
		QRCodeValue:  c.QRCodeValue,
		CreatedAt:    c.CreatedAt,
	}
}

// pathID parses the {id} path segment, responds 400 itself on garbage
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func handleRegisterCustomer(customerService customerService, l logger.Logger) http.Handler {
	type request struct {
		FirstName    string `json:"first_name" validate:"required,min=1,max=100"`
		LastName     string `json:"last_name" validate:"required,min=1,max=100"`
		Email        string `json:"email" validate:"required,email"`
		Phone        string `json:"phone" validate:"max=30"`
		Address      string `json:"address" validate:"max=300"`
		CustomerType string `json:"customer_type" validate:"omitempty,oneof=in-person remote"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := customerService.Register(r.Context(), customer.RegisterInput{
			FirstName:    data.FirstName,
			LastName:     data.LastName,
			Email:        data.Email,
			Phone:        data.Phone,
			Address:      data.Address,
			CustomerType: data.CustomerType,
		})
		switch {
		case err == nil:
			render.JSONWithStatus(w, newCustomerResponse(created), http.StatusCreated)
		case errors.Is(err, apperrors.ErrCustomerAlreadyExists):
			render.ServiceError(w, "Customer with this email already exists", http.StatusConflict)
		default:
			l.Error("Failed to register customer", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListCustomers(customerService customerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customers, err := customerService.List(r.Context())
		if err != nil {
			l.Error("Failed to list customers", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]customerResponse, 0, len(customers))
		for _, c := range customers {
			response = append(response, newCustomerResponse(c))
		}
		render.JSON(w, response)
	})
}

func handleGetCustomer(customerService customerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		c, err := customerService.GetByID(r.Context(), id)
		switch {
		case err == nil:
			render.JSON(w, newCustomerResponse(c))
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		default:
			l.Error("Failed to get customer", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

// handleCustomerByQR resolves a scanned pass to the customer it belongs to
func handleCustomerByQR(customerService customerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		qrValue := r.URL.Query().Get("qr")
		if qrValue == "" {
			render.ServiceError(w, "Query parameter 'qr' is required", http.StatusBadRequest)
			return
		}

		c, err := customerService.GetByQRCode(r.Context(), qrValue)
		switch {
		case err == nil:
			render.JSON(w, newCustomerResponse(c))
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		default:
			l.Error("Failed to get customer by QR code", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdateCustomer(customerService customerService, l logger.Logger) http.Handler {
	type request struct {
		FirstName    *string `json:"first_name" validate:"omitempty,min=1,max=100"`
		LastName     *string `json:"last_name" validate:"omitempty,min=1,max=100"`
		Email        *string `json:"email" validate:"omitempty,email"`
		Phone        *string `json:"phone" validate:"omitempty,max=30"`
		Address      *string `json:"address" validate:"omitempty,max=300"`
		CustomerType *string `json:"customer_type" validate:"omitempty,oneof=in-person remote"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := customerService.Update(r.Context(), id, customer.UpdateInput{
			FirstName:    data.FirstName,
			LastName:     data.LastName,
			Email:        data.Email,
			Phone:        data.Phone,
			Address:      data.Address,
			CustomerType: data.CustomerType,
		})
		switch {
		case err == nil:
			render.JSON(w, newCustomerResponse(updated))
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrCustomerAlreadyExists):
			render.ServiceError(w, "Customer with this email already exists", http.StatusConflict)
		default:
			l.Error("Failed to update customer", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteCustomer(customerService customerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		err := customerService.Delete(r.Context(), id)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete customer", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleSendPass(customerService customerService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		err := customerService.SendPass(r.Context(), id)
		switch {
		case err == nil:
			render.JSON(w, response{Message: "QR pass sent"})
		case errors.Is(err, apperrors.ErrCustomerNotFound):
			render.ServiceError(w, "Customer not found", http.StatusNotFound)
		default:
			l.Error("Failed to send QR pass", "customer_id", id, "error", err)
			render.ServiceError(w, "Failed to send QR pass", http.StatusBadGateway)
		}
	})
}
