package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/procurio/backend/internal/infrastructure/config"
	"github.com/procurio/backend/internal/infrastructure/logger"
	"github.com/procurio/backend/internal/infrastructure/migration"
)

func main() {
	path := flag.String("path", "migrations", "directory containing migration files")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	if err := run(flag.Args(), *path, log); err != nil {
		log.Fatal("migration command failed", zap.Error(err))
	}
}

func run(args []string, path string, log *zap.Logger) error {
	cmd := args[0]

	// create and list work on the filesystem only, no database needed
	switch cmd {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate create <name> [description]")
		}
		desc := ""
		if len(args) > 2 {
			desc = args[2]
		}
		mf, err := migration.CreateMigration(path, args[1], desc)
		if err != nil {
			return err
		}
		log.Info("migration created",
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath))
		return nil
	case "list":
		files, err := migration.ListMigrations(path)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			log.Info("no migrations found", zap.String("path", path))
			return nil
		}
		for _, f := range files {
			fmt.Printf("%s  %s\n", f.Version, f.Name)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	mg, err := migration.New(db, path, log)
	if err != nil {
		return err
	}
	defer mg.Close()

	switch cmd {
	case "up":
		return mg.Up()
	case "down":
		return mg.Down()
	case "step":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("step count %q: %w", args[1], err)
		}
		return mg.Steps(n)
	case "version":
		version, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate force <version>")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("version %q: %w", args[1], err)
		}
		return mg.Force(v)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: migrate [flags] <command> [args]

Commands:
  up                         apply all pending migrations
  down                       roll back all migrations
  step <n>                   apply n migrations (negative n rolls back)
  version                    print the current schema version
  force <version>            overwrite the schema version (repair only)
  create <name> [desc]       create a new up/down migration pair
  list                       list migrations in the migrations directory

Flags:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Database connection comes from the PROCURIO_DATABASE_* environment
variables, same as the server.
`)
}
