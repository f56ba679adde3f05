package exercises

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/internal/ui/features/common"
	commonComponents "github.com/leapstack-labs/sqldrill/internal/ui/features/common/components"
	"github.com/leapstack-labs/sqldrill/internal/ui/features/exercises/components"
	"github.com/leapstack-labs/sqldrill/internal/ui/features/exercises/pages"
	extypes "github.com/leapstack-labs/sqldrill/internal/ui/features/exercises/types"
	"github.com/leapstack-labs/sqldrill/internal/ui/notifier"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
)

// Handlers provides HTTP handlers for the exercises feature.
type Handlers struct {
	engine       *practice.Engine
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *practice.Engine, sessionStore sessions.Store, notify *notifier.Notifier, isDev bool) *Handlers {
	return &Handlers{
		engine:       eng,
		sessionStore: sessionStore,
		notifier:     notify,
		isDev:        isDev,
	}
}

// CurrentExercise redirects to the first exercise the learner has not completed.
func (h *Handlers) CurrentExercise(w http.ResponseWriter, r *http.Request) {
	learner, err := common.LearnerID(w, r, h.sessionStore, h.engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	p, err := h.engine.Progress(r.Context(), learner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := p.Current
	if id == 0 {
		ids := h.engine.Catalog().IDs()
		if len(ids) == 0 {
			http.Error(w, "no exercises", http.StatusNotFound)
			return
		}
		id = ids[0]
	}
	http.Redirect(w, r, "/exercises/"+strconv.Itoa(id), http.StatusSeeOther)
}

// ExercisePage renders the exercise page with full content.
func (h *Handlers) ExercisePage(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, err := common.LearnerID(w, r, h.sessionStore, h.engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	view, err := h.buildExerciseView(r.Context(), learner, id)
	if errors.Is(err, catalog.ErrExerciseNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := pages.ExercisePage(view, h.isDev).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ExerciseUpdates is the long-lived SSE endpoint of the exercise page. It
// re-renders the sidebar when the learner's progress changes and the whole
// workspace when the catalog is reloaded.
func (h *Handlers) ExerciseUpdates(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, err := common.LearnerID(w, r, h.sessionStore, h.engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-updates:
			if !ev.Concerns(learner) {
				continue
			}
			if err := h.sendUpdate(ctx, sse, learner, id, ev.Learner == ""); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) sendUpdate(ctx context.Context, sse *datastar.ServerSentEventGenerator, learner string, id int, full bool) error {
	if !full {
		sidebar, err := common.BuildSidebar(ctx, h.engine, learner, id)
		if err != nil {
			return err
		}
		return sse.PatchElementTempl(commonComponents.Sidebar(sidebar))
	}
	view, err := h.buildExerciseView(ctx, learner, id)
	if err != nil {
		return err
	}
	return sse.PatchElementTempl(pages.ExerciseApp(view))
}

// RunSSE executes the editor SQL and patches the result.
func (h *Handlers) RunSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals before creating the SSE, which consumes the request body.
	var signals extypes.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(commonComponents.ErrorMessage("result", "Failed to read signals: "+err.Error()))
		return
	}

	sse := datastar.NewSSE(w, r)
	res, err := h.engine.Execute(r.Context(), signals.SQL)
	if err != nil {
		_ = sse.PatchElementTempl(commonComponents.ErrorMessage("result", queryErrorMessage(err)))
		return
	}
	_ = sse.PatchElementTempl(components.ClearVerdict())
	if err := sse.PatchElementTempl(commonComponents.ResultTable(res)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SubmitSSE checks the editor SQL and patches the verdict, result and progress.
func (h *Handlers) SubmitSSE(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, err := common.LearnerID(w, r, h.sessionStore, h.engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var signals extypes.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(commonComponents.ErrorMessage("verdict", "Failed to read signals: "+err.Error()))
		return
	}

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	sub, err := h.engine.Submit(ctx, learner, id, signals.SQL)
	if err != nil {
		_ = sse.PatchElementTempl(commonComponents.ErrorMessage("verdict", queryErrorMessage(err)))
		return
	}

	_ = sse.PatchElementTempl(components.Verdict(sub))
	_ = sse.PatchElementTempl(commonComponents.ResultTable(sub.Result))

	if sub.FirstCompletion {
		sidebar, err := common.BuildSidebar(ctx, h.engine, learner, id)
		if err != nil {
			_ = sse.ConsoleError(err)
			return
		}
		_ = sse.PatchElementTempl(commonComponents.Sidebar(sidebar))
		h.notifier.ProgressChanged(learner)
	}
}

// HintSSE unlocks the next hint and patches the hint list.
func (h *Handlers) HintSSE(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, err := common.LearnerID(w, r, h.sessionStore, h.engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	if _, err := h.engine.UnlockNextHint(ctx, learner, id); err != nil {
		msg := err.Error()
		if errors.Is(err, catalog.ErrHintNotFound) {
			msg = "Bài tập này không có gợi ý."
		}
		_ = sse.PatchElementTempl(commonComponents.ErrorMessage("hints", msg))
		return
	}
	hints, err := h.engine.Hints(ctx, learner, id)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(components.Hints(hints)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SolutionSSE patches the reference solution.
func (h *Handlers) SolutionSSE(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)
	sql, notes, err := h.engine.Solution(id)
	if err != nil {
		_ = sse.PatchElementTempl(commonComponents.ErrorMessage("solution", err.Error()))
		return
	}
	if err := sse.PatchElementTempl(components.Solution(sql, notes)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SaveDraftSSE persists the editor text.
func (h *Handlers) SaveDraftSSE(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, err := common.LearnerID(w, r, h.sessionStore, h.engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var signals extypes.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.engine.SaveDraft(r.Context(), learner, id, signals.SQL); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildExerciseView assembles all data needed for the exercise page.
func (h *Handlers) buildExerciseView(ctx context.Context, learner string, id int) (extypes.ExerciseView, error) {
	ex, err := h.engine.Exercise(id)
	if err != nil {
		return extypes.ExerciseView{}, err
	}
	sidebar, err := common.BuildSidebar(ctx, h.engine, learner, id)
	if err != nil {
		return extypes.ExerciseView{}, err
	}
	draft, err := h.engine.Draft(ctx, learner, id)
	if err != nil {
		return extypes.ExerciseView{}, err
	}
	hints, err := h.engine.Hints(ctx, learner, id)
	if err != nil {
		return extypes.ExerciseView{}, err
	}

	completed := false
	for _, item := range sidebar.Exercises {
		if item.ID == id {
			completed = item.Completed
		}
	}

	return extypes.ExerciseView{
		Sidebar:   sidebar,
		Exercise:  ex,
		Draft:     draft,
		Hints:     hints,
		Completed: completed,
	}, nil
}

// exerciseID parses the {id} URL parameter, answering 404 when it is invalid.
func exerciseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func queryErrorMessage(err error) string {
	if errors.Is(err, practice.ErrEmptyQuery) {
		return "Vui lòng nhập câu lệnh SQL."
	}
	return err.Error()
}
