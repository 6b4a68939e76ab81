// Command migrate manages the restaurant database schema.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/migration"
	"github.com/restaurant/backend/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var errUsage = errors.New("invalid usage")

// source is where migrations are read from: a directory on disk when one
// exists, otherwise the files compiled into the binary.
type source struct {
	fsys fs.FS
	dir  string
}

func (s source) embedded() bool { return s.dir == "" }

type command struct {
	usage string
	run   func(log *zap.Logger, src source, args []string) error
}

type schemaCommand func(log *zap.Logger, m *migration.Migrator, args []string) error

var commands = map[string]command{
	"up":      {"up", withMigrator(func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Up() })},
	"down":    {"down", withMigrator(func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Down() })},
	"step":    {"step <n>", withMigrator(stepCmd)},
	"goto":    {"goto <version>", withMigrator(gotoCmd)},
	"version": {"version", withMigrator(versionCmd)},
	"force":   {"force <version>", withMigrator(forceCmd)},
	"drop":    {"drop -confirm", withMigrator(dropCmd)},
	"create":  {"create <name> [description]", createCmd},
	"list":    {"list", listCmd},
}

func main() {
	dir := flag.String("path", "", "migrations directory (default ./migrations, else the embedded set)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = printUsage
	flag.Parse()

	log, err := logger.New(logger.Config{Level: *level, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, *dir, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			printUsage()
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.Error(err))
	}
}

func run(log *zap.Logger, dir string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	src, err := resolveSource(dir)
	if err != nil {
		return err
	}
	log.Debug("Migration source",
		zap.String("command", args[0]),
		zap.String("dir", src.dir),
		zap.Bool("embedded", src.embedded()),
	)
	return cmd.run(log, src, args[1:])
}

func resolveSource(dir string) (source, error) {
	if dir == "" {
		if _, err := os.Stat(defaultMigrationsDir); err != nil {
			return source{fsys: migrations.FS}, nil
		}
		dir = defaultMigrationsDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return source{}, fmt.Errorf("migrations path: %w", err)
	}
	return source{fsys: os.DirFS(abs), dir: abs}, nil
}

func withMigrator(fn schemaCommand) func(*zap.Logger, source, []string) error {
	return func(log *zap.Logger, src source, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		m, err := migration.NewFromFS(db, src.fsys, log)
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(log, m, args)
	}
}

func intArg(args []string, name string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s required", errUsage, name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errUsage, name, args[0])
	}
	return n, nil
}

func stepCmd(_ *zap.Logger, m *migration.Migrator, args []string) error {
	n, err := intArg(args, "step count")
	if err != nil {
		return err
	}
	return m.Steps(n)
}

func gotoCmd(_ *zap.Logger, m *migration.Migrator, args []string) error {
	v, err := intArg(args, "version")
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%w: version must not be negative", errUsage)
	}
	return m.GoTo(uint(v))
}

func forceCmd(_ *zap.Logger, m *migration.Migrator, args []string) error {
	v, err := intArg(args, "version")
	if err != nil {
		return err
	}
	return m.Force(v)
}

func versionCmd(log *zap.Logger, m *migration.Migrator, _ []string) error {
	st, err := m.Status()
	if err != nil {
		return err
	}
	if !st.Applied {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current schema version", zap.Uint("version", st.Version), zap.Bool("dirty", st.Dirty))
	return nil
}

func dropCmd(_ *zap.Logger, m *migration.Migrator, args []string) error {
	if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
		return fmt.Errorf("%w: drop destroys every table, rerun as 'migrate drop -confirm'", errUsage)
	}
	return m.Drop()
}

func createCmd(log *zap.Logger, src source, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migration name required", errUsage)
	}
	if src.embedded() {
		return errors.New("no migrations directory found; run from the repository root or pass -path")
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(src.dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listCmd(_ *zap.Logger, src source, _ []string) error {
	files, err := migration.ListMigrations(src.fsys)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

func printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprintln(os.Stderr, "Usage: migrate [-path dir] [-log-level level] <command>")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "\nDatabase settings come from APP_DATABASE_* or config.yaml.")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}
