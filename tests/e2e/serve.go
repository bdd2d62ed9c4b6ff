package e2e

import (
	"context"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/checkdesk/checkdesk/internal/handlers"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/quickbooks"
	"github.com/checkdesk/checkdesk/internal/repository/postgres"
	"github.com/checkdesk/checkdesk/internal/service/auth"
	"github.com/checkdesk/checkdesk/internal/service/billing"
	"github.com/checkdesk/checkdesk/internal/service/catalog"
	"github.com/checkdesk/checkdesk/internal/service/checkin"
	"github.com/checkdesk/checkdesk/internal/service/customer"
	"github.com/checkdesk/checkdesk/internal/testutil"
)

type Services struct {
	AuthService     *auth.AuthService
	CustomerService *customer.CustomerService
	CatalogService  *catalog.CatalogService
	CheckInService  *checkin.CheckInService
	Accounting      *AccountingStub
}

// AccountingStub stands in for the remote accounting service. Searches find
// nothing and every create succeeds, so each billed check-in lands on a fresh
// invoice. Consolidation behavior is covered by the billing package tests.
type AccountingStub struct {
	nextID   int
	Invoices []quickbooks.Invoice
}

func (a *AccountingStub) id() string {
	a.nextID++
	return strconv.Itoa(a.nextID)
}

func (a *AccountingStub) Query(ctx context.Context, query string) (quickbooks.QueryResponse, error) {
	return quickbooks.QueryResponse{}, nil
}

func (a *AccountingStub) CreateCustomer(ctx context.Context, c quickbooks.Customer) (quickbooks.Customer, error) {
	c.ID = a.id()
	return c, nil
}

func (a *AccountingStub) CreateItem(ctx context.Context, item quickbooks.Item) (quickbooks.Item, error) {
	item.ID = a.id()
	return item, nil
}

func (a *AccountingStub) CreateInvoice(ctx context.Context, invoice quickbooks.Invoice) (quickbooks.Invoice, error) {
	invoice.ID = a.id()
	invoice.SyncToken = "0"
	a.Invoices = append(a.Invoices, invoice)
	return invoice, nil
}

func (a *AccountingStub) UpdateInvoice(ctx context.Context, invoice quickbooks.Invoice) (quickbooks.Invoice, error) {
	return invoice, nil
}

func (a *AccountingStub) AuthorizeURL(state string) string {
	return "https://appcenter.example.com/connect/oauth2?state=" + state
}

func (a *AccountingStub) Exchange(ctx context.Context, code string, realmID string) (quickbooks.Token, error) {
	return quickbooks.Token{RealmID: realmID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (a *AccountingStub) Connected() (quickbooks.Token, bool) {
	return quickbooks.Token{}, false
}

func (a *AccountingStub) Disconnect() error {
	return nil
}

// BearerToken creates a staff member and returns a valid access token for it
func BearerToken(t *testing.T, s Services) string {
	t.Helper()

	_, err := s.AuthService.CreateStaff(t.Context(), "e2e-staff", "pwd")
	require.NoError(t, err, "failed to create staff")

	pair, err := s.AuthService.Login(t.Context(), "e2e-staff", "pwd")
	require.NoError(t, err, "failed to login staff")

	return pair.Access.Value
}

// Create db transaction and run the whole service in it (one connection cause
// one transaction). The created transaction passed to the inner function: so,
// you can safely use testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		l := logger.NewNoOpLogger()
		storage := postgres.NewStorage(tx)
		accounting := &AccountingStub{}

		authService, err := auth.NewService(auth.Config{SecretKey: "test-secret"}, storage)
		require.NoError(t, err, "auth service starting error")

		customerService := customer.NewService(storage, nil, l)
		catalogService := catalog.NewService(storage, l)
		billingService := billing.NewService(accounting, storage, l)
		checkInService := checkin.NewService(storage, billingService, l)

		router := handlers.NewRouter(
			authService,
			customerService,
			catalogService,
			checkInService,
			accounting,
			l,
		)

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService:     authService,
			CustomerService: customerService,
			CatalogService:  catalogService,
			CheckInService:  checkInService,
			Accounting:      accounting,
		})
	})
}
