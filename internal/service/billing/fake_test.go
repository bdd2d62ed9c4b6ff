package billing

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/checkdesk/checkdesk/internal/quickbooks"
)

// fakeAccounting is an in-memory stand-in for the remote accounting API.
// It understands just enough of the query language to serve the
// consolidation flow: customer by display name, item by name, first income
// account, open invoices of a customer within a date range and the most
// recently created invoice.
type fakeAccounting struct {
	mu sync.Mutex

	// When set, every call fails with this error
	err error

	customers []quickbooks.Customer
	items     []quickbooks.Item
	invoices  []quickbooks.Invoice

	nextID          int
	createdInvoices int
	updatedInvoices int
}

var (
	reDisplayName = regexp.MustCompile(`DisplayName = '([^']*)'`)
	reItemName    = regexp.MustCompile(`Name = '([^']*)'`)
	reCustomerRef = regexp.MustCompile(`CustomerRef = '([^']*)'`)
	reDateFrom    = regexp.MustCompile(`TxnDate >= '([^']*)'`)
	reDateTo      = regexp.MustCompile(`TxnDate <= '([^']*)'`)
)

func (f *fakeAccounting) id() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *fakeAccounting) Query(ctx context.Context, query string) (quickbooks.QueryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return quickbooks.QueryResponse{}, f.err
	}

	switch {
	case strings.Contains(query, "FROM Customer"):
		name := firstGroup(reDisplayName, query)
		var found []quickbooks.Customer
		for _, c := range f.customers {
			if c.DisplayName == name {
				found = append(found, c)
			}
		}
		return quickbooks.QueryResponse{Customer: found}, nil

	case strings.Contains(query, "FROM Item"):
		name := firstGroup(reItemName, query)
		var found []quickbooks.Item
		for _, i := range f.items {
			if i.Name == name {
				found = append(found, i)
			}
		}
		return quickbooks.QueryResponse{Item: found}, nil

	case strings.Contains(query, "FROM Account"):
		return quickbooks.QueryResponse{
			Account: []quickbooks.Account{{ID: "79", Name: "Sales of Product Income", AccountType: "Income"}},
		}, nil

	case strings.Contains(query, "ORDERBY MetaData.CreateTime"):
		if len(f.invoices) == 0 {
			return quickbooks.QueryResponse{}, nil
		}
		return quickbooks.QueryResponse{Invoice: []quickbooks.Invoice{f.invoices[len(f.invoices)-1]}}, nil

	case strings.Contains(query, "FROM Invoice"):
		customerID := firstGroup(reCustomerRef, query)
		from, to := firstGroup(reDateFrom, query), firstGroup(reDateTo, query)

		var found []quickbooks.Invoice
		for _, inv := range f.invoices {
			if inv.CustomerRef.Value != customerID || !inv.Balance.IsPositive() {
				continue
			}
			if inv.TxnDate < from || inv.TxnDate > to {
				continue
			}
			found = append(found, inv)
		}
		return quickbooks.QueryResponse{Invoice: found}, nil
	}

	return quickbooks.QueryResponse{}, nil
}

func (f *fakeAccounting) CreateCustomer(ctx context.Context, customer quickbooks.Customer) (quickbooks.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return quickbooks.Customer{}, f.err
	}

	customer.ID = f.id()
	customer.SyncToken = "0"
	f.customers = append(f.customers, customer)
	return customer, nil
}

func (f *fakeAccounting) CreateItem(ctx context.Context, item quickbooks.Item) (quickbooks.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return quickbooks.Item{}, f.err
	}

	item.ID = f.id()
	item.SyncToken = "0"
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeAccounting) CreateInvoice(ctx context.Context, invoice quickbooks.Invoice) (quickbooks.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return quickbooks.Invoice{}, f.err
	}

	invoice.ID = f.id()
	invoice.SyncToken = "0"
	invoice.Balance = lineTotal(invoice.Line)
	f.invoices = append(f.invoices, invoice)
	f.createdInvoices++
	return invoice, nil
}

func (f *fakeAccounting) UpdateInvoice(ctx context.Context, update quickbooks.Invoice) (quickbooks.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return quickbooks.Invoice{}, f.err
	}

	for i, inv := range f.invoices {
		if inv.ID != update.ID {
			continue
		}
		if inv.SyncToken != update.SyncToken {
			return quickbooks.Invoice{}, &quickbooks.APIError{StatusCode: 400, Body: "Stale Object Error"}
		}

		inv.Line = update.Line
		inv.Balance = lineTotal(inv.Line)
		token, _ := strconv.Atoi(inv.SyncToken)
		inv.SyncToken = strconv.Itoa(token + 1)
		f.invoices[i] = inv
		f.updatedInvoices++
		return inv, nil
	}

	return quickbooks.Invoice{}, &quickbooks.APIError{StatusCode: 400, Body: "Object Not Found"}
}

func (f *fakeAccounting) invoice(id string) (quickbooks.Invoice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return quickbooks.Invoice{}, false
}

func lineTotal(lines []quickbooks.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
