package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/internal/ui/features/common"
	"github.com/leapstack-labs/sqldrill/internal/ui/notifier"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handlers provides the JSON API handlers.
type Handlers struct {
	engine       *practice.Engine
	sessionStore sessions.Store
	notifier     *notifier.Notifier
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *practice.Engine, sessionStore sessions.Store, notify *notifier.Notifier) *Handlers {
	return &Handlers{engine: eng, sessionStore: sessionStore, notifier: notify}
}

// ListExercises returns the catalog with the learner's completion marks.
func (h *Handlers) ListExercises(w http.ResponseWriter, r *http.Request) {
	learner, ok := h.learner(w, r)
	if !ok {
		return
	}
	p, err := h.engine.Progress(r.Context(), learner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	exercises := h.engine.Catalog().List()
	out := make([]ExerciseSummary, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, summarize(ex, p))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetExercise returns one exercise with hint states and the learner's draft.
func (h *Handlers) GetExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, ok := h.learner(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	ex, err := h.engine.Exercise(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	p, err := h.engine.Progress(ctx, learner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	hints, err := h.engine.Hints(ctx, learner, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	draft, err := h.engine.Draft(ctx, learner, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	md, err := ex.PromptMarkdown()
	if err != nil {
		md = ex.PromptText()
	}

	detail := ExerciseDetail{
		ExerciseSummary: summarize(ex, p),
		PromptHTML:      ex.PromptHTML,
		PromptMarkdown:  md,
		Hints:           make([]HintView, 0, len(hints)),
		Draft:           draft,
	}
	for _, hs := range hints {
		hv := HintView{ID: hs.ID, Title: hs.Title, Level: string(hs.Level), Unlocked: hs.Unlocked}
		if hs.Unlocked {
			hv.Content = hs.Content
		}
		detail.Hints = append(detail.Hints, hv)
	}
	writeJSON(w, http.StatusOK, detail)
}

// Query runs ad-hoc SQL against the practice table.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	var req SQLRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.engine.Execute(r.Context(), req.SQL)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Submit checks an answer and records the attempt.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, ok := h.learner(w, r)
	if !ok {
		return
	}
	var req SQLRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	sub, err := h.engine.Submit(ctx, learner, id, req.SQL)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	p, err := h.engine.Progress(ctx, learner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sub.FirstCompletion {
		h.notifier.ProgressChanged(learner)
	}
	writeJSON(w, http.StatusOK, SubmitResponse{Submission: sub, Progress: progressResponse(p)})
}

// GetDraft returns the learner's saved editor text.
func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, ok := h.learner(w, r)
	if !ok {
		return
	}
	draft, err := h.engine.Draft(r.Context(), learner, id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, DraftResponse{ExerciseID: id, SQL: draft})
}

// PutDraft saves the learner's editor text.
func (h *Handlers) PutDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, ok := h.learner(w, r)
	if !ok {
		return
	}
	var req SQLRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.engine.SaveDraft(r.Context(), learner, id, req.SQL); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnlockHint reveals the next locked hint.
func (h *Handlers) UnlockHint(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	learner, ok := h.learner(w, r)
	if !ok {
		return
	}
	hint, err := h.engine.UnlockNextHint(r.Context(), learner, id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, HintView{
		ID:       hint.ID,
		Title:    hint.Title,
		Level:    string(hint.Level),
		Unlocked: true,
		Content:  hint.Content,
	})
}

// GetSolution returns the reference solution.
func (h *Handlers) GetSolution(w http.ResponseWriter, r *http.Request) {
	id, ok := exerciseID(w, r)
	if !ok {
		return
	}
	sql, notes, err := h.engine.Solution(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, SolutionResponse{ExerciseID: id, SQL: sql, Notes: notes})
}

// GetProgress returns the learner's progress.
func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	learner, ok := h.learner(w, r)
	if !ok {
		return
	}
	p, err := h.engine.Progress(r.Context(), learner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse(p))
}

func (h *Handlers) learner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := common.LearnerID(w, r, h.sessionStore, h.engine)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return "", false
	}
	return id, true
}

func summarize(ex *catalog.Exercise, p *core.Progress) ExerciseSummary {
	return ExerciseSummary{
		ID:              ex.ID,
		Title:           ex.Title,
		Description:     ex.Description,
		ExpectedColumns: ex.ExpectedColumns,
		HintCount:       len(ex.Hints),
		Completed:       p.IsCompleted(ex.ID),
	}
}

func progressResponse(p *core.Progress) ProgressResponse {
	return ProgressResponse{Progress: p, Percent: p.Percent(), AllComplete: p.AllComplete()}
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrExerciseNotFound), errors.Is(err, catalog.ErrHintNotFound):
		return http.StatusNotFound
	case errors.Is(err, practice.ErrEmptyQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func exerciseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, catalog.ErrExerciseNotFound)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
