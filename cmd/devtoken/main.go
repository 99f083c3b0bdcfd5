// Command devtoken prints a signed bearer token for local API and tool-call testing.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Simplici0/jobmargin/internal/auth"
	"github.com/Simplici0/jobmargin/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Args[1:], os.Stdout); err != nil {
		logger.Error("devtoken failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	owner := fs.String("owner", "", "owner id to put in the token subject (defaults to SEED_OWNER_ID)")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	envFile := fs.String("env-file", ".env", "dotenv file to read")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	if !cfg.IsDev() {
		return errors.New("devtoken only runs with APP_ENV=development")
	}
	if *owner == "" {
		*owner = cfg.SeedOwnerID
	}
	if *ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	token, err := auth.NewBearer(cfg.JWTSecret, cfg.JWTIssuer).Issue(*owner, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
