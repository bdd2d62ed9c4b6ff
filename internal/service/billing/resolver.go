package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/quickbooks"
)

// resolveCustomer returns the accounting-service record for a local customer,
// creating it remotely when it doesn't exist yet. Successful lookups are
// cached in the external_refs table so repeat check-ins skip the remote
// round-trip and name collisions can't flip the mapping later.
func (s *Service) resolveCustomer(ctx context.Context, customer models.Customer) (quickbooks.Ref, error) {
	cached, err := s.storage.ExternalRef().Get(ctx, models.ExternalEntityCustomer, customer.ID)
	if err == nil {
		return quickbooks.Ref{Value: cached.ExternalID, Name: cached.DisplayName}, nil
	}
	if !errors.Is(err, apperrors.ErrExternalRefNotFound) {
		return quickbooks.Ref{}, err
	}

	displayName := customer.DisplayName()

	query := fmt.Sprintf("SELECT * FROM Customer WHERE DisplayName = '%s'", escapeQueryValue(displayName))
	result, err := s.client.Query(ctx, query)
	if err != nil {
		return quickbooks.Ref{}, fmt.Errorf("searching remote customer: %w", err)
	}

	var externalID string
	if len(result.Customer) > 0 {
		// First exact-name match wins, no disambiguation
		externalID = result.Customer[0].ID
		s.logger.Debug("Found remote customer", "display_name", displayName, "external_id", externalID)
	} else {
		remote := quickbooks.Customer{
			DisplayName: displayName,
			GivenName:   customer.FirstName,
			FamilyName:  customer.LastName,
		}
		if customer.Email != "" {
			remote.PrimaryEmailAddr = &quickbooks.EmailAddress{Address: customer.Email}
		}
		if customer.Phone != "" {
			remote.PrimaryPhone = &quickbooks.TelephoneNumber{FreeFormNumber: customer.Phone}
		}

		created, err := s.client.CreateCustomer(ctx, remote)
		if err != nil {
			return quickbooks.Ref{}, fmt.Errorf("creating remote customer: %w", err)
		}
		externalID = created.ID
		s.logger.Info("Created remote customer", "display_name", displayName, "external_id", externalID)
	}

	s.saveRef(ctx, models.ExternalEntityCustomer, customer.ID, externalID, displayName)

	return quickbooks.Ref{Value: externalID, Name: displayName}, nil
}

// resolveItem returns the accounting-service item for a session type,
// creating it as a Service item when absent. New items are attached to the
// company's first income account.
func (s *Service) resolveItem(ctx context.Context, st models.SessionType) (quickbooks.Ref, error) {
	cached, err := s.storage.ExternalRef().Get(ctx, models.ExternalEntityItem, st.ID)
	if err == nil {
		return quickbooks.Ref{Value: cached.ExternalID, Name: cached.DisplayName}, nil
	}
	if !errors.Is(err, apperrors.ErrExternalRefNotFound) {
		return quickbooks.Ref{}, err
	}

	query := fmt.Sprintf("SELECT * FROM Item WHERE Name = '%s'", escapeQueryValue(st.Name))
	result, err := s.client.Query(ctx, query)
	if err != nil {
		return quickbooks.Ref{}, fmt.Errorf("searching remote item: %w", err)
	}

	var externalID string
	if len(result.Item) > 0 {
		externalID = result.Item[0].ID
		s.logger.Debug("Found remote item", "name", st.Name, "external_id", externalID)
	} else {
		incomeAccountID := s.incomeAccountID(ctx)

		created, err := s.client.CreateItem(ctx, quickbooks.Item{
			Name:             st.Name,
			Type:             "Service",
			IncomeAccountRef: &quickbooks.Ref{Value: incomeAccountID},
			UnitPrice:        st.Price,
		})
		if err != nil {
			return quickbooks.Ref{}, fmt.Errorf("creating remote item: %w", err)
		}
		externalID = created.ID
		s.logger.Info("Created remote item", "name", st.Name, "external_id", externalID)
	}

	s.saveRef(ctx, models.ExternalEntityItem, st.ID, externalID, st.Name)

	return quickbooks.Ref{Value: externalID, Name: st.Name}, nil
}

// incomeAccountID finds the first income account to attach new items to.
// Falls back to account "1" when the query fails, which may not exist in
// every company file. TODO: make the income account configurable.
func (s *Service) incomeAccountID(ctx context.Context) string {
	result, err := s.client.Query(ctx, "SELECT * FROM Account WHERE AccountType = 'Income' MAXRESULTS 1")
	if err != nil || len(result.Account) == 0 {
		s.logger.Warn("Could not find income account, using default", "error", err)
		return "1"
	}

	return result.Account[0].ID
}

// saveRef caches the mapping. A cache miss only costs an extra remote
// lookup next time, so failures are logged and swallowed.
func (s *Service) saveRef(ctx context.Context, entityType string, localID uuid.UUID, externalID string, displayName string) {
	err := s.storage.ExternalRef().Save(ctx, models.ExternalRef{
		EntityType:  entityType,
		LocalID:     localID,
		ExternalID:  externalID,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		s.logger.Warn("Failed to cache external ref", "entity_type", entityType, "local_id", localID, "error", err)
	}
}

// escapeQueryValue escapes single quotes for the remote query language
func escapeQueryValue(v string) string {
	return strings.ReplaceAll(v, "'", `\'`)
}
