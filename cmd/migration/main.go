package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/suwei8/lotto-ai4/internal/app"
	"github.com/suwei8/lotto-ai4/internal/config"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "./db/migrations"

var errUsage = errors.New("usage")

type command struct {
	name    string
	steps   int
	version int
}

// result is the JSON line printed on stdout after a command.
type result struct {
	Command string `json:"command"`
	Version uint   `json:"version"`
	Dirty   bool   `json:"dirty"`
	Changed bool   `json:"changed"`
}

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Force(version int) error
	Version() (uint, bool, error)
}

// migrateLogger forwards golang-migrate progress into the structured logger.
type migrateLogger struct {
	logger *logging.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrate")
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Zap().Core().Enabled(zap.DebugLevel)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	op, err := parseCommand(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		printUsage(stderr)
		return 2
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "load .env: %v\n", err)
		return 1
	}
	cfg, err := config.LoadDatabase()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", op.name, err)
		return 1
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: stderr})
	defer func() { _ = logger.Sync() }()
	logger = logger.With("command", op.name)

	dsn, err := app.MigrationURL(cfg)
	if err != nil {
		logger.Error("resolve database", "error", err)
		return 1
	}
	dir, err := resolveMigrationsDir()
	if err != nil {
		logger.Error("resolve migrations dir", "error", err)
		return 1
	}

	sourceURL := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		logger.Error("create migrator", "source", sourceURL, "error", err)
		return 1
	}
	m.Log = migrateLogger{logger: logger}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	out, err := apply(m, op, logger)
	if err != nil {
		logger.Error("migration failed", "error", err)
		return 1
	}
	if err := writeResult(stdout, out); err != nil {
		logger.Error("write result", "error", err)
		return 1
	}
	logger.Info("migration finished", "version", out.Version, "dirty", out.Dirty, "changed", out.Changed)
	return 0
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, fmt.Errorf("%w: a command is required", errUsage)
	}
	op := command{name: strings.ToLower(strings.TrimSpace(args[0]))}
	rest := args[1:]

	switch op.name {
	case "up", "version":
		if len(rest) > 0 {
			return command{}, fmt.Errorf("%w: %s takes no arguments", errUsage, op.name)
		}
	case "down":
		steps, err := parseSteps(rest)
		if err != nil {
			return command{}, fmt.Errorf("%w: %w", errUsage, err)
		}
		op.steps = steps
	case "force":
		if len(rest) != 1 {
			return command{}, fmt.Errorf("%w: force requires a version argument", errUsage)
		}
		version, err := parseVersion(rest[0])
		if err != nil {
			return command{}, fmt.Errorf("%w: %w", errUsage, err)
		}
		op.version = version
	default:
		return command{}, fmt.Errorf("%w: unknown command %q", errUsage, op.name)
	}
	return op, nil
}

func apply(m migrator, op command, logger *logging.Logger) (result, error) {
	out := result{Command: op.name, Changed: op.name != "version"}

	var err error
	switch op.name {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-op.steps)
	case "force":
		err = m.Force(op.version)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		out.Changed = false
		err = nil
	}
	if err != nil {
		return result{}, fmt.Errorf("%s: %w", op.name, err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return result{}, fmt.Errorf("read version: %w", err)
	default:
		out.Version, out.Dirty = version, dirty
	}
	return out, nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("down takes at most one steps argument")
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	return value, nil
}

// resolveMigrationsDir prefers MIGRATIONS_DIR and falls back to the
// repository layout.
func resolveMigrationsDir() (string, error) {
	dir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
	if dir == "" {
		dir = defaultMigrationsDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("migration directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("migration directory %s is not a directory", abs)
	}
	return abs, nil
}

func writeResult(w io.Writer, out result) error {
	raw, err := sonic.Marshal(out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

func printUsage(w io.Writer) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "usage: %s <up|down|version|force> [args]\n", name)
	fmt.Fprintln(w, "examples:")
	fmt.Fprintf(w, "  %s up\n", name)
	fmt.Fprintf(w, "  %s down 1\n", name)
	fmt.Fprintf(w, "  %s version\n", name)
	fmt.Fprintf(w, "  %s force 1\n", name)
}
