package staffctx

import (
	"context"

	"github.com/checkdesk/checkdesk/internal/models"
)

type ctxKey string

const staffKey ctxKey = "staff"

// Create a new context with the staff account
func New(ctx context.Context, s models.Staff) context.Context {
	return context.WithValue(ctx, staffKey, s)
}

// Extract the staff account from the context
func FromContext(ctx context.Context) (models.Staff, bool) {
	s, ok := ctx.Value(staffKey).(models.Staff)
	return s, ok
}
