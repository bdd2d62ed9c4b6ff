package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/checkdesk/checkdesk/internal/repository"
)

// DBTX is satisfied by pgxpool.Pool and pgx.Tx so every repo can run
// both on the pool and inside a transaction
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) Customer() repository.CustomerRepo {
	return &CustomerRepo{DB: s.db}
}

func (s *Storage) SessionType() repository.SessionTypeRepo {
	return &SessionTypeRepo{DB: s.db}
}

func (s *Storage) CheckIn() repository.CheckInRepo {
	return &CheckInRepo{DB: s.db}
}

func (s *Storage) ExternalRef() repository.ExternalRefRepo {
	return &ExternalRefRepo{DB: s.db}
}

func (s *Storage) Staff() repository.StaffRepo {
	return &StaffRepo{DB: s.db}
}

func (s *Storage) Refresh() repository.RefreshTokenRepo {
	return &RefreshTokenRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
