// Command migrate applies the embedded schema migrations to PostgreSQL.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/recon/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "RECON_DB_DSN"

type options struct {
	dsn        string
	configPath string
	up         bool
	down       bool
	steps      int
	version    bool
	force      int
	forceSet   bool
}

func main() {
	opts := parseFlags()

	dsn, err := resolveDSN(opts)
	if err != nil {
		log.Fatalf("resolve dsn: %v", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Fatalf("create migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	defer m.Close()

	if err := run(m, opts); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() *options {
	opts := &options{}
	flag.StringVar(&opts.dsn, "dsn", "", "database connection URL (overrides config)")
	flag.StringVar(&opts.configPath, "config", config.BaseConfigFile, "recon config file used when no dsn is given")
	flag.BoolVar(&opts.up, "up", false, "apply all up migrations")
	flag.BoolVar(&opts.down, "down", false, "revert all migrations")
	flag.IntVar(&opts.steps, "steps", 0, "apply N migrations (negative reverts)")
	flag.BoolVar(&opts.version, "version", false, "print the current migration version")
	flag.IntVar(&opts.force, "force", -1, "force the recorded version without migrating")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			opts.forceSet = true
		}
	})
	return opts
}

// resolveDSN prefers the -dsn flag, then RECON_DB_DSN, then the database
// section of the recon config (with its RECON_DB_* overrides).
func resolveDSN(opts *options) (string, error) {
	if opts.dsn != "" {
		return opts.dsn, nil
	}
	if dsn := os.Getenv(envDSN); dsn != "" {
		return dsn, nil
	}

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return "", err
	}
	return cfg.Database.URL(), nil
}

func run(m *migrate.Migrate, opts *options) error {
	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case opts.forceSet:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		fmt.Printf("forced to version %d\n", opts.force)
	case opts.up:
		if err := ignoreNoChange(m.Up()); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		fmt.Println("migrations applied")
	case opts.down:
		if err := ignoreNoChange(m.Down()); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		fmt.Println("migrations reverted")
	case opts.steps != 0:
		if err := ignoreNoChange(m.Steps(opts.steps)); err != nil {
			return fmt.Errorf("migrate steps: %w", err)
		}
		fmt.Printf("applied %d migration steps\n", opts.steps)
	default:
		fmt.Println("usage: migrate [-dsn URL | -config FILE] [-up | -down | -steps N | -version | -force N]")
		flag.PrintDefaults()
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
