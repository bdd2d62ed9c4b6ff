package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/quickbooks"
)

const dateLayout = "2006-01-02"

// findOpenInvoice looks for an invoice of the customer dated within the
// calendar month of date that still has an outstanding balance. A positive
// balance is the proxy for "open": the remote has no usable status field
// here. A fully paid invoice mid-month is NOT reused, a new one is started.
func (s *Service) findOpenInvoice(ctx context.Context, customerRef quickbooks.Ref, date time.Time) (*quickbooks.Invoice, error) {
	firstDay := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	lastDay := firstDay.AddDate(0, 1, -1)

	query := fmt.Sprintf(
		"SELECT * FROM Invoice WHERE CustomerRef = '%s' AND TxnDate >= '%s' AND TxnDate <= '%s' AND Balance > '0'",
		escapeQueryValue(customerRef.Value),
		firstDay.Format(dateLayout),
		lastDay.Format(dateLayout),
	)

	result, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching monthly invoice: %w", err)
	}

	if len(result.Invoice) == 0 {
		return nil, nil
	}

	// First open invoice wins
	return &result.Invoice[0], nil
}

// createInvoice opens this month's invoice with the check-in as its first
// line. Transaction and due date are both the check-in date.
func (s *Service) createInvoice(ctx context.Context, customerRef quickbooks.Ref, itemRef quickbooks.Ref, st models.SessionType, date time.Time, description string) (string, error) {
	invoice := quickbooks.Invoice{
		CustomerRef: customerRef,
		DocNumber:   s.newDocNumber(ctx),
		TxnDate:     date.Format(dateLayout),
		DueDate:     date.Format(dateLayout),
		Line:        []quickbooks.Line{newSalesLine(itemRef, st.Price, description)},
	}

	created, err := s.client.CreateInvoice(ctx, invoice)
	if err != nil {
		return "", fmt.Errorf("creating invoice: %w", err)
	}

	s.logger.Info("Created monthly invoice",
		"invoice_id", created.ID, "doc_number", created.DocNumber, "customer", customerRef.Name)
	return created.ID, nil
}

// appendLine adds the check-in to an existing invoice, resending the current
// lines plus the new one. The invoice's SyncToken guards against concurrent
// edits: a stale token makes the remote reject the update and the billing
// attempt fails without retry.
func (s *Service) appendLine(ctx context.Context, invoice *quickbooks.Invoice, itemRef quickbooks.Ref, st models.SessionType, description string) (string, error) {
	update := quickbooks.Invoice{
		ID:          invoice.ID,
		SyncToken:   invoice.SyncToken,
		CustomerRef: invoice.CustomerRef,
		Line:        append(append([]quickbooks.Line{}, invoice.Line...), newSalesLine(itemRef, st.Price, description)),
		Sparse:      true,
	}

	updated, err := s.client.UpdateInvoice(ctx, update)
	if err != nil {
		return "", fmt.Errorf("appending invoice line: %w", err)
	}

	s.logger.Info("Appended line to monthly invoice", "invoice_id", updated.ID, "lines", len(updated.Line))
	return updated.ID, nil
}

// newDocNumber continues the company's invoice number sequence from the most
// recently created invoice. Numbering is cosmetic, so any failure falls back
// to a timestamp-derived number instead of failing the billing attempt.
func (s *Service) newDocNumber(ctx context.Context) string {
	prev := ""

	result, err := s.client.Query(ctx, "SELECT * FROM Invoice ORDERBY MetaData.CreateTime DESC MAXRESULTS 1")
	if err != nil {
		s.logger.Warn("Could not fetch latest invoice number", "error", err)
	} else if len(result.Invoice) > 0 {
		prev = result.Invoice[0].DocNumber
	}

	return nextDocNumber(prev, s.now())
}

func newSalesLine(itemRef quickbooks.Ref, price decimal.Decimal, description string) quickbooks.Line {
	return quickbooks.Line{
		Amount:     price,
		DetailType: "SalesItemLineDetail",
		SalesItemLineDetail: &quickbooks.SalesItemLineDetail{
			ItemRef:   itemRef,
			Qty:       1,
			UnitPrice: price,
		},
		Description: description,
	}
}
