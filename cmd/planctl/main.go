// Command planctl runs planning scenarios offline and mints API tokens.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockplan/backend/internal/infrastructure/auth"
	"github.com/stockplan/backend/internal/infrastructure/config"
	"github.com/stockplan/backend/internal/infrastructure/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Output = "stderr"
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	switch os.Args[1] {
	case "plan":
		err = runPlan(os.Args[2:], cfg, os.Stdin, os.Stdout)
	case "token":
		err = runToken(os.Args[2:], cfg, os.Stdout)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		log.Error("Unknown command", zap.String("command", os.Args[1]))
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func runPlan(args []string, cfg *config.Config, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	file := fs.String("f", "-", "Scenario file, - for stdin")
	parallelism := fs.Int("parallelism", cfg.Planning.Parallelism, "Areas allocated concurrently")
	timeout := fs.Duration("timeout", time.Minute, "Run timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open scenario: %w", err)
		}
		defer f.Close()
		in = f
	}
	scenario, err := ReadScenario(in)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	today := time.Now().In(cfg.Planning.Location())
	out, err := scenario.Run(ctx, today, *parallelism)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runToken(args []string, cfg *config.Config, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	tenant := fs.String("tenant", "", "Tenant ID (required)")
	user := fs.String("user", "", "User ID, random when empty")
	username := fs.String("username", "planctl", "Username claim")
	roles := fs.String("roles", "", "Comma separated roles")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tenantID, err := uuid.Parse(*tenant)
	if err != nil {
		return fmt.Errorf("invalid -tenant: %w", err)
	}
	userID := uuid.New()
	if *user != "" {
		if userID, err = uuid.Parse(*user); err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
	}

	token, expiresAt, err := auth.NewJWTService(cfg.JWT).IssueAccessToken(auth.IssueTokenInput{
		TenantID: tenantID,
		UserID:   userID,
		Username: *username,
		Roles:    splitRoles(*roles),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n# expires %s\n", token, expiresAt.UTC().Format(time.RFC3339))
	return err
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func printUsage() {
	fmt.Println(`Stock plan command line tool

Usage:
  planctl <command> [flags]

Commands:
  plan    Run a planning scenario and print the resulting lines as JSON
            -f string            Scenario file, - for stdin (default "-")
            -parallelism int     Areas allocated concurrently
            -timeout duration    Run timeout (default 1m)
  token   Mint an access token for the API
            -tenant string       Tenant ID (required)
            -user string         User ID (default: random)
            -username string     Username claim (default "planctl")
            -roles string        Comma separated roles

Configuration is read like the server: config.toml, .env and STOCKPLAN_* variables.`)
}
