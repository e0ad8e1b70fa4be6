package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/autocare/platform/internal/infrastructure/config"
	"github.com/autocare/platform/internal/infrastructure/logger"
	"github.com/autocare/platform/internal/infrastructure/migration"
	"github.com/autocare/platform/migrations"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	var (
		schema   string
		dir      string
		logLevel string
	)
	flag.StringVar(&schema, "schema", "server", "Schema to migrate: server (Postgres) or agent (SQLite)")
	flag.StringVar(&dir, "path", "", "Migrations directory used by create and list (default: ./migrations/<schema>)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Get command
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// Resolve the migration source for the schema
	var src migration.Source
	switch schema {
	case "server":
		src = migration.ServerSource()
	case "agent":
		src = migration.AgentSource()
	default:
		log.Fatal("Unknown schema", zap.String("schema", schema))
	}
	if dir == "" {
		dir = filepath.Join("migrations", src.Dir)
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("schema", schema),
	)

	// create and list work on files only
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(dir, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		entries, err := migration.ListMigrations(migrations.FS, src.Dir)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(entries) == 0 {
			log.Info("No migrations found")
			return
		}
		log.Info("Embedded migrations", zap.Int("count", len(entries)))
		for _, e := range entries {
			fmt.Println("  -", e.BaseName())
		}
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Pick the database for the schema
	driver, dsn := config.DriverPostgres, cfg.Database.DSN()
	sqlDriver := "postgres"
	if schema == "agent" {
		driver, dsn, sqlDriver = config.DriverSQLite, cfg.Agent.SQLitePath, "sqlite3"
	} else if cfg.Database.Driver != config.DriverPostgres {
		log.Fatal("The server schema targets Postgres; SQLite development databases use database.auto_migrate")
	}

	// Connect to database
	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	// Create migrator
	m, err := migration.New(db, driver, src, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	// Execute command
	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "steps":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate steps <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration steps failed", zap.Error(err))
		}

	case "goto":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate goto <version>")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.GoTo(uint(version)); err != nil {
			log.Fatal("Migration goto failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
			return
		}
		log.Info("Current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`AutoCare database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  steps <n>             Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Set the version without running migrations (repairs a dirty state)
  create <name> [desc]  Create the next migration file pair
  list                  List embedded migrations

Flags:
  -schema string        server (Postgres, default) or agent (SQLite at agent.sqlite_path)
  -path string          Directory for create (default: ./migrations/<schema>)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment:
  AUTOCARE_DATABASE_HOST, AUTOCARE_DATABASE_PORT, AUTOCARE_DATABASE_USER,
  AUTOCARE_DATABASE_PASSWORD, AUTOCARE_DATABASE_DBNAME, AUTOCARE_AGENT_SQLITE_PATH

Examples:
  migrate up
  migrate steps -1
  migrate -schema agent version
  migrate create add_revenue_indexes "Index revenue by date"`)
}
