package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/quickbooks"
)

const (
	defaultListenAddr    = "localhost:8000"
	defaultLoggingLevel  = logger.LevelInfo
	defaultEnvironment   = logger.EnvProduction
	defaultQBEnvironment = quickbooks.EnvSandbox
	defaultQBTokenFile   = "tokens.json"
	defaultSMTPPort      = 587
	defaultPublicBaseURL = "http://localhost:8000"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the checkdesk service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Some internal parts (like signing JWT tokens) uses symmetric encryption, so this key is used for that purpose
	SecretKey string

	// Environment
	Environment string

	// Public base URL of the service, encoded into the QR passes
	PublicBaseURL string

	// Accounting service OAuth app credentials
	QBClientID     string
	QBClientSecret string
	QBRedirectURI  string

	// 'sandbox' or 'production'
	QBEnvironment string

	// Where the OAuth tokens are persisted between restarts
	QBTokenFile string

	// Outgoing mail settings, QR passes are not mailed when SMTPHost is empty
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:      defaultLoggingLevel,
		ListenAddr:    defaultListenAddr,
		Environment:   defaultEnvironment,
		PublicBaseURL: defaultPublicBaseURL,
		QBEnvironment: defaultQBEnvironment,
		QBTokenFile:   defaultQBTokenFile,
		SMTPPort:      defaultSMTPPort,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":              setString(&c.ListenAddr),
		"DATABASE_URI":             setString(&c.DatabaseDSN),
		"SECRET_KEY":               setString(&c.SecretKey),
		"LOG_LEVEL":                setString(&c.LogLevel),
		"ENVIRONMENT":              setString(&c.Environment),
		"PUBLIC_BASE_URL":          setString(&c.PublicBaseURL),
		"QUICKBOOKS_CLIENT_ID":     setString(&c.QBClientID),
		"QUICKBOOKS_CLIENT_SECRET": setString(&c.QBClientSecret),
		"QUICKBOOKS_REDIRECT_URI":  setString(&c.QBRedirectURI),
		"QUICKBOOKS_ENVIRONMENT":   setString(&c.QBEnvironment),
		"QUICKBOOKS_TOKEN_FILE":    setString(&c.QBTokenFile),
		"SMTP_HOST":                setString(&c.SMTPHost),
		"SMTP_PORT":                setInt(&c.SMTPPort),
		"SMTP_USERNAME":            setString(&c.SMTPUsername),
		"SMTP_PASSWORD":            setString(&c.SMTPPassword),
		"MAIL_FROM":                setString(&c.MailFrom),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("checkdesk", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.QBEnvironment, "quickbooks-environment", c.QBEnvironment, "Accounting environment (sandbox, production)")
	fs.StringVar(&c.QBTokenFile, "quickbooks-token-file", c.QBTokenFile, "Path to the stored OAuth tokens")

	return fs.Parse(args)
}
