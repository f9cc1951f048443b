package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"transformline/internal/config"
	"transformline/internal/db"
	"transformline/internal/engine"
	"transformline/internal/migrate"
	"transformline/internal/orchestrator"
)

// PlanEnvKey names the current plan of a workspace in its .env file.
const PlanEnvKey = "TRANSFORMLINE_PLAN"

func envPath(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ".env")
}

// LoadEnv exports the workspace .env file. Variables already present in the
// environment win.
func LoadEnv(workspace string) error {
	path := envPath(workspace)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// SetEnvValue writes key=value into the workspace .env file, keeping other
// entries.
func SetEnvValue(workspace, key, value string) error {
	path := envPath(workspace)
	env := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		if env, err = godotenv.Read(path); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
	env[key] = value
	return godotenv.Write(env, path)
}

// OpenEngine opens and migrates the workspace database and wires an engine
// over the workspace configuration, or the built-in defaults when there is
// none. The caller closes e.DB.
func OpenEngine(ctx context.Context, workspace string, log zerolog.Logger) (*engine.Engine, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate %s: %w", db.Path(workspace), err)
	}
	e := engine.New(conn, cfg)
	e.Log = log
	return e, nil
}

type planLister interface {
	List(ctx context.Context) ([]orchestrator.Plan, error)
}

// ResolvePlan picks the plan a command acts on: the override, then the
// workspace's current plan, then the only plan in the workspace.
func ResolvePlan(ctx context.Context, override string, plans planLister) (string, error) {
	if id := strings.TrimSpace(override); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(os.Getenv(PlanEnvKey)); id != "" {
		return id, nil
	}
	all, err := plans.List(ctx)
	if err != nil {
		return "", err
	}
	switch len(all) {
	case 0:
		return "", fmt.Errorf("no transformation in workspace; create one with tl transform init")
	case 1:
		return all[0].ID, nil
	}
	return "", fmt.Errorf("multiple transformations exist; specify --plan or run tl transform use")
}
