package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/cli/config"
	"github.com/leapstack-labs/sqldrill/internal/cli/output"
	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/pkg/dataset"
)

// Check statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// HealthCheck is the result of one doctor check.
type HealthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks  []HealthCheck `json:"checks"`
	Healthy bool          `json:"healthy"`
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, engine and exercises",
		Long: `Verify that sqldrill is ready to use:

- the configuration file and engine settings
- the engine connects and the practice table is loaded
- the exercise catalog is valid
- every reference solution passes on the configured engine
- the state database is writable`,
		Example: `  sqldrill doctor
  sqldrill doctor --engine duckdb
  sqldrill doctor -o json`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContextWithoutEngine(cmd)
	ctx := cmd.Context()

	checks := []HealthCheck{configCheck(cc.Cfg)}

	cat, err := loadCatalog(cc.Cfg)
	if err != nil {
		checks = append(checks, HealthCheck{Name: "Exercises", Status: StatusFail, Detail: err.Error()})
	} else {
		checks = append(checks, HealthCheck{
			Name:   "Exercises",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d exercises from %s", cat.Len(), cat.Source()),
		})
	}

	eng, err := createEngine(cmd, cc.Cfg, cc.Logger)
	if err != nil {
		checks = append(checks,
			HealthCheck{Name: "Engine", Status: StatusFail, Detail: err.Error()},
			HealthCheck{Name: "Solutions", Status: StatusWarn, Detail: "engine unavailable", Skipped: true},
			HealthCheck{Name: "State", Status: StatusWarn, Detail: "engine unavailable", Skipped: true},
		)
	} else {
		defer func() { _ = eng.Close() }()
		checks = append(checks,
			engineCheck(ctx, eng),
			solutionsCheck(ctx, eng),
			stateCheck(eng, cc.Cfg),
		)
	}

	out := DoctorOutput{Checks: checks, Healthy: true}
	for _, c := range checks {
		if c.Status == StatusFail {
			out.Healthy = false
		}
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	renderDoctor(r, out)
	return nil
}

func configCheck(cfg *config.Config) HealthCheck {
	c := HealthCheck{Name: "Configuration", Status: StatusPass}
	if file := config.GetConfigFileUsed(); file != "" {
		c.Detail = file
	} else {
		c.Detail = "defaults (no sqldrill.yaml found)"
	}
	if err := cfg.Validate(); err != nil {
		c.Status = StatusFail
		c.Detail = err.Error()
	}
	return c
}

func engineCheck(ctx context.Context, eng *practice.Engine) HealthCheck {
	c := HealthCheck{Name: "Engine"}
	res, err := eng.Execute(ctx, "SELECT COUNT(*) FROM "+dataset.TableName)
	switch {
	case err != nil:
		c.Status, c.Detail = StatusFail, err.Error()
	case res.Failed():
		c.Status, c.Detail = StatusFail, res.Error
	default:
		c.Status = StatusPass
		c.Detail = fmt.Sprintf("%s, %s has %v rows", eng.Adapter().DialectName(), dataset.TableName, res.Rows[0][0])
	}
	return c
}

// solutionsCheck runs every reference solution through the checker without
// recording attempts.
func solutionsCheck(ctx context.Context, eng *practice.Engine) HealthCheck {
	var failed []string
	exercises := eng.Catalog().List()
	for _, ex := range exercises {
		sub, err := eng.Check(ctx, ex.ID, ex.Solution)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%d (%v)", ex.ID, err))
			continue
		}
		switch {
		case !sub.Verdict.IsCorrect():
			failed = append(failed, fmt.Sprintf("%d (%s)", ex.ID, sub.Message))
		case sub.RowCheckMessage != "":
			failed = append(failed, fmt.Sprintf("%d (row check: %s)", ex.ID, sub.RowCheckMessage))
		}
	}
	if len(failed) > 0 {
		return HealthCheck{
			Name:   "Solutions",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%d of %d fail on this engine: %v", len(failed), len(exercises), failed),
		}
	}
	return HealthCheck{
		Name:   "Solutions",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d reference solutions pass", len(exercises)),
	}
}

func stateCheck(eng *practice.Engine, cfg *config.Config) HealthCheck {
	learners, err := eng.Store().ListLearners()
	if err != nil {
		return HealthCheck{Name: "State", Status: StatusFail, Detail: err.Error()}
	}
	return HealthCheck{
		Name:   "State",
		Status: StatusPass,
		Detail: fmt.Sprintf("%s (%d learners)", cfg.StatePath, len(learners)),
	}
}

func renderDoctor(r *output.Renderer, out DoctorOutput) {
	r.Header(1, "sqldrill doctor")
	for _, c := range out.Checks {
		status := "success"
		switch c.Status {
		case StatusWarn:
			status = "warning"
		case StatusFail:
			status = "error"
		}
		r.StatusLine(c.Name, status, c.Detail)
	}
	r.Println()
	if out.Healthy {
		r.Success("Ready to practice")
	} else {
		r.Error("Some checks failed")
	}
}
