// Command addstaff creates a staff account for the dashboard.
// Reads the database DSN and secret key the same way the server does.
package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/checkdesk/checkdesk/internal/db"
	"github.com/checkdesk/checkdesk/internal/repository/postgres"
	"github.com/checkdesk/checkdesk/internal/service/auth"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		databaseDSN = os.Getenv("DATABASE_URI")
		secretKey   = os.Getenv("SECRET_KEY")
		username    string
	)

	fs := pflag.NewFlagSet("addstaff", pflag.ContinueOnError)
	fs.StringVarP(&databaseDSN, "database", "d", databaseDSN, "Database connection string")
	fs.StringVarP(&secretKey, "secret-key", "s", secretKey, "Secret key")
	fs.StringVarP(&username, "username", "u", "", "Username of the new staff account")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if username == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	pool, err := db.ConnectAndMigrate(ctx, databaseDSN)
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer pool.Close()

	authService, err := auth.NewService(auth.Config{SecretKey: secretKey}, postgres.NewStorage(pool))
	if err != nil {
		return err
	}

	staff, err := authService.CreateStaff(ctx, username, string(password))
	if err != nil {
		return fmt.Errorf("creating staff account: %w", err)
	}

	fmt.Printf("Created staff account %q (%s)\n", staff.Username, staff.ID)
	return nil
}
