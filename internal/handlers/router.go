package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/checkdesk/checkdesk/internal/handlers/middleware"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/quickbooks"
	"github.com/checkdesk/checkdesk/internal/repository"
	"github.com/checkdesk/checkdesk/internal/service/catalog"
	"github.com/checkdesk/checkdesk/internal/service/checkin"
	"github.com/checkdesk/checkdesk/internal/service/customer"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	customerService customerService,
	catalogService catalogService,
	checkInService checkInService,
	accounting accountingAuth,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/login", handleLogin(authService, logger))
	api.Handle("POST /auth/refresh", handleTokenRefresh(authService, logger))
	api.Handle("GET /auth/me", withAuth(handleStaffMe()))

	api.Handle("POST /customers", withAuth(handleRegisterCustomer(customerService, logger)))
	api.Handle("GET /customers", withAuth(handleListCustomers(customerService, logger)))
	api.Handle("GET /customers/by-qr", withAuth(handleCustomerByQR(customerService, logger)))
	api.Handle("GET /customers/{id}", withAuth(handleGetCustomer(customerService, logger)))
	api.Handle("PATCH /customers/{id}", withAuth(handleUpdateCustomer(customerService, logger)))
	api.Handle("DELETE /customers/{id}", withAuth(handleDeleteCustomer(customerService, logger)))
	api.Handle("POST /customers/{id}/send-pass", withAuth(handleSendPass(customerService, logger)))

	api.Handle("POST /session-types", withAuth(handleCreateSessionType(catalogService, logger)))
	api.Handle("GET /session-types", withAuth(handleListSessionTypes(catalogService, logger)))
	api.Handle("GET /session-types/{id}", withAuth(handleGetSessionType(catalogService, logger)))
	api.Handle("DELETE /session-types/{id}", withAuth(handleDeleteSessionType(catalogService, logger)))
	api.Handle("POST /session-types/import", withAuth(handleImportSessionTypes(catalogService, logger)))

	api.Handle("POST /checkins", withAuth(handleCheckIn(checkInService, logger)))
	api.Handle("POST /checkins/manual", withAuth(handleManualCheckIn(checkInService, logger)))
	api.Handle("GET /checkins", withAuth(handleListCheckIns(checkInService, logger)))

	// Callback is hit by the accounting service redirecting the browser,
	// it carries no bearer token. The state check stands in for auth there.
	states := newStateStore()
	api.Handle("GET /quickbooks/connect", withAuth(handleAccountingConnect(accounting, states)))
	api.Handle("GET /quickbooks/callback", handleAccountingCallback(accounting, states, logger))
	api.Handle("GET /quickbooks/status", withAuth(handleAccountingStatus(accounting)))
	api.Handle("POST /quickbooks/disconnect", withAuth(handleAccountingDisconnect(accounting, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Login staff with username and password
	// Has to return apperrors.ErrStaffNotFound for unknown username or wrong password
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error)

	// Get request and return staff if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.Staff, error)
}

type customerService interface {
	Register(ctx context.Context, in customer.RegisterInput) (models.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Customer, error)
	GetByQRCode(ctx context.Context, qrValue string) (models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, in customer.UpdateInput) (models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SendPass(ctx context.Context, id uuid.UUID) error
}

type catalogService interface {
	Create(ctx context.Context, in catalog.SessionTypeInput) (models.SessionType, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.SessionType, error)
	List(ctx context.Context) ([]models.SessionType, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Import(ctx context.Context, inputs []catalog.SessionTypeInput) (int, error)
}

type checkInService interface {
	Record(ctx context.Context, in checkin.RecordInput) (models.CheckIn, error)
	List(ctx context.Context, opts repository.ListCheckInsOpts) ([]models.CheckIn, error)
}

// accountingAuth is the OAuth connection lifecycle of the accounting service
type accountingAuth interface {
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string, realmID string) (quickbooks.Token, error)
	Connected() (quickbooks.Token, bool)
	Disconnect() error
}
