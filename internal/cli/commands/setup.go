package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/sqldrill/internal/cli/config"
	"github.com/leapstack-labs/sqldrill/internal/cli/output"
	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *practice.Engine
	Renderer *output.Renderer
	// Learner is the ID progress is recorded under.
	Learner string
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cmd, cc.Cfg, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	if _, err := eng.Learner(cc.Learner, ""); err != nil {
		_ = eng.Close()
		return nil, nil, fmt.Errorf("failed to register learner: %w", err)
	}
	cc.Engine = eng

	cleanup := func() {
		_ = eng.Close()
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need database access.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	learner := cfg.Learner
	if learner == "" {
		learner = config.DefaultLearner
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Learner:  learner,
	}
}

// getConfig returns the current configuration, or the defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// loadCatalog returns the catalog from the configured directory, or the embedded one.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.ExercisesDir == "" {
		return catalog.Default()
	}
	if err := cfg.ValidateDirectories(); err != nil {
		return nil, err
	}
	return catalog.LoadDir(cfg.ExercisesDir)
}

func createEngine(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*practice.Engine, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load exercises: %w", err)
	}

	engineCfg := practice.Config{
		Adapter:      cfg.Engine.AdapterConfig(),
		StatePath:    cfg.StatePath,
		Catalog:      cat,
		QueryTimeout: cfg.QueryTimeout,
		Logger:       logger,
	}
	return practice.New(cmd.Context(), engineCfg)
}

// parseExerciseID parses a positional exercise ID.
func parseExerciseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid exercise id %q: expected a positive number", arg)
	}
	return id, nil
}

// readSQL resolves SQL from arguments, an input file or piped stdin, in that order.
func readSQL(cmd *cobra.Command, args []string, inputFile string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if inputFile != "" {
		data, err := os.ReadFile(inputFile) //nolint:gosec // user-provided path is intentional
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
