// Package practice runs the exercise loop: it executes learner SQL against the
// seeded practice engine, checks answers against the catalog and records
// drafts, attempts and completions in the state store.
package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/leapstack-labs/sqldrill/internal/state"
	"github.com/leapstack-labs/sqldrill/pkg/adapter"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
	"github.com/leapstack-labs/sqldrill/pkg/checker"
	"github.com/leapstack-labs/sqldrill/pkg/core"
	"github.com/leapstack-labs/sqldrill/pkg/dataset"
)

// DefaultQueryTimeout bounds a single learner query.
const DefaultQueryTimeout = 30 * time.Second

// ErrEmptyQuery is returned when the submitted SQL is blank.
var ErrEmptyQuery = errors.New("query is empty")

// Feedback shown to the learner after a submission.
const (
	MessageCorrect     = "🎉 Chúc mừng! Bạn đã hoàn thành bài tập thành công!"
	MessageIncorrect   = "❌ Kết quả chưa đúng. Hãy kiểm tra lại logic hoặc sử dụng gợi ý."
	MessageAllComplete = "🏆 Bạn đã hoàn thành tất cả bài tập!"
	MessageRowCheck    = "Các cột đã đúng, nhưng dữ liệu trả về có vẻ chưa khớp với yêu cầu."
)

// Config holds engine configuration.
type Config struct {
	// Adapter selects and configures the practice engine.
	Adapter core.AdapterConfig
	// StatePath is the path to the SQLite state database.
	StatePath string
	// Catalog is the exercise set (nil uses the embedded catalog).
	Catalog *catalog.Catalog
	// QueryTimeout bounds each query (zero uses DefaultQueryTimeout).
	QueryTimeout time.Duration
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine orchestrates exercises, query execution and learner state.
type Engine struct {
	db      adapter.Adapter
	store   core.Store
	content atomic.Pointer[content]
	timeout time.Duration
	logger  *slog.Logger
}

// content is a catalog together with its compiled row checks.
type content struct {
	catalog *catalog.Catalog
	checks  map[int]*checker.RowCheck
}

// New opens the state store and the practice engine described by cfg.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cat := cfg.Catalog
	if cat == nil {
		var err error
		cat, err = catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded catalog: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	adapterCfg := cfg.Adapter
	if adapterCfg.Type == "" {
		adapterCfg.Type = adapter.DefaultType
	}
	logger.Debug("opening practice engine", "engine", adapterCfg.Type, "state", cfg.StatePath)

	db, err := adapter.Open(ctx, adapterCfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	e, err := NewWithDeps(db, store, cat, cfg.QueryTimeout, logger)
	if err != nil {
		_ = db.Close()
		_ = store.Close()
		return nil, err
	}
	return e, nil
}

// NewWithDeps builds an engine over an already connected and seeded adapter
// and an opened store.
func NewWithDeps(db adapter.Adapter, store core.Store, cat *catalog.Catalog, timeout time.Duration, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	e := &Engine{db: db, store: store, timeout: timeout, logger: logger}
	if err := e.ReloadCatalog(cat); err != nil {
		return nil, err
	}
	return e, nil
}

// Close releases the engine and the store.
func (e *Engine) Close() error {
	e.logger.Debug("closing practice engine")

	var errs []error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing engine: %w", errors.Join(errs...))
	}
	return nil
}

// ReloadCatalog swaps the exercise set. Row checks are compiled up front so a
// broken catalog is rejected and the previous one stays active.
func (e *Engine) ReloadCatalog(cat *catalog.Catalog) error {
	if cat == nil {
		return fmt.Errorf("catalog is nil")
	}

	checks := make(map[int]*checker.RowCheck)
	for _, ex := range cat.List() {
		if strings.TrimSpace(ex.Check) == "" {
			continue
		}
		rc, err := checker.CompileRowCheck(fmt.Sprintf("exercise_%d.star", ex.ID), ex.Check)
		if err != nil {
			return fmt.Errorf("exercise %d: %w", ex.ID, err)
		}
		checks[ex.ID] = rc
	}

	e.content.Store(&content{catalog: cat, checks: checks})
	e.logger.Debug("catalog loaded", "source", cat.Source(), "exercises", cat.Len(), "row_checks", len(checks))
	return nil
}

// Catalog returns the active exercise set.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.content.Load().catalog
}

// Exercise returns one exercise of the active catalog.
func (e *Engine) Exercise(id int) (*catalog.Exercise, error) {
	return e.Catalog().Get(id)
}

// Store returns the learner state store.
func (e *Engine) Store() core.Store {
	return e.store
}

// Adapter returns the practice engine adapter.
func (e *Engine) Adapter() adapter.Adapter {
	return e.db
}

// Execute runs learner SQL against the practice dataset. Engine rejections are
// reported in Result.Error; the returned error covers blank input, timeouts of
// the connection itself and other infrastructure failures.
func (e *Engine) Execute(ctx context.Context, sql string) (*core.Result, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, ErrEmptyQuery
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.db.Run(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if res.Failed() {
		e.logger.Debug("query rejected", "error", res.Error)
	} else {
		e.logger.Debug("query executed", "rows", res.RowCount(), "duration", res.Duration)
	}
	return res, nil
}

// Check runs sql as an answer to an exercise and reports the verdict without
// recording anything.
func (e *Engine) Check(ctx context.Context, exerciseID int, sql string) (*core.Submission, error) {
	c := e.content.Load()
	ex, err := c.catalog.Get(exerciseID)
	if err != nil {
		return nil, err
	}

	res, err := e.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	sub := &core.Submission{ExerciseID: ex.ID, SQL: sql, Result: res}

	report := checker.Evaluate(res, ex.ExpectedColumns)
	sub.Verdict = report.Verdict
	sub.MissingColumns = report.Missing

	switch report.Verdict {
	case core.VerdictError:
		sub.Message = report.Message
	case core.VerdictIncorrect:
		sub.Message = MessageIncorrect + " " + report.Message
	case core.VerdictCorrect:
		sub.Message = MessageCorrect
		if rc, ok := c.checks[ex.ID]; ok {
			e.applyRowCheck(ctx, rc, sub)
		}
	}
	return sub, nil
}

// Submit checks sql as an answer to an exercise and records the attempt.
// A query the engine rejects yields a submission with the error verdict,
// not a Go error.
func (e *Engine) Submit(ctx context.Context, learnerID string, exerciseID int, sql string) (*core.Submission, error) {
	sub, err := e.Check(ctx, exerciseID, sql)
	if err != nil {
		return nil, err
	}
	res := sub.Result

	if err := e.store.SaveDraft(learnerID, exerciseID, sql); err != nil {
		return nil, err
	}

	attempt := &core.Attempt{
		LearnerID:  learnerID,
		ExerciseID: exerciseID,
		SQL:        sql,
		Verdict:    sub.Verdict,
		Error:      res.Error,
		RowCount:   res.RowCount(),
		DurationMS: res.Duration.Milliseconds(),
	}
	if err := e.store.RecordAttempt(attempt); err != nil {
		return nil, err
	}
	sub.AttemptID = attempt.ID

	if sub.Verdict.IsCorrect() {
		first, err := e.store.MarkCompleted(learnerID, exerciseID, attempt.ID)
		if err != nil {
			return nil, err
		}
		sub.FirstCompletion = first
	}

	e.logger.Info("submission checked",
		"learner", learnerID,
		"exercise", exerciseID,
		"verdict", sub.Verdict,
		"first_completion", sub.FirstCompletion)
	return sub, nil
}

// applyRowCheck attaches the exercise's row check feedback to a correct
// submission. The verdict depends on the result columns only, so a failing
// check is advice for the learner and never changes it.
func (e *Engine) applyRowCheck(ctx context.Context, rc *checker.RowCheck, sub *core.Submission) {
	ok, msg, err := rc.Run(ctx, sub.Result)
	if err != nil {
		e.logger.Warn("row check failed", "exercise", sub.ExerciseID, "error", err)
		return
	}
	if !ok {
		sub.RowCheckMessage = msg
		if sub.RowCheckMessage == "" {
			sub.RowCheckMessage = MessageRowCheck
		}
	}
}

// Preview returns the first limit rows of the practice dataset as stored in
// the engine. A limit <= 0 returns every row.
func (e *Engine) Preview(ctx context.Context, limit int) (*core.Result, error) {
	sql := "SELECT * FROM " + dataset.TableName + " ORDER BY SalesOrderID"
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	res, err := e.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		return nil, fmt.Errorf("failed to preview dataset: %s", res.Error)
	}
	return res, nil
}

// Schema describes the practice table as the engine reports it.
func (e *Engine) Schema(ctx context.Context) (*core.TableMetadata, error) {
	meta, err := e.db.GetTableMetadata(ctx, dataset.TableName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe practice table: %w", err)
	}
	return meta, nil
}
