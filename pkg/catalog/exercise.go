package catalog

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// Level is the difficulty tier of a hint.
type Level string

// Hint levels, from gentlest to most revealing.
const (
	LevelBasic        Level = "basic"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelBasic, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Label returns the learner-facing name of the level.
func (l Level) Label() string {
	switch l {
	case LevelBasic:
		return "Cơ bản"
	case LevelIntermediate:
		return "Trung bình"
	case LevelAdvanced:
		return "Nâng cao"
	}
	return "Khác"
}

// Hint is one step of progressive help for an exercise.
type Hint struct {
	ID      int    `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
	Level   Level  `yaml:"level" json:"level"`
}

// Exercise pairs a prompt with the shape of the expected result.
type Exercise struct {
	ID              int      `yaml:"id" json:"id"`
	Title           string   `yaml:"title" json:"title"`
	Description     string   `yaml:"description" json:"description"`
	PromptHTML      string   `yaml:"prompt_html" json:"prompt_html"`
	ExpectedColumns []string `yaml:"expected_columns" json:"expected_columns"`
	Solution        string   `yaml:"solution" json:"-"`
	Notes           string   `yaml:"notes" json:"-"`
	Hints           []Hint   `yaml:"hints" json:"-"`
	// Check is an optional Starlark program defining check(columns, rows).
	// It only produces advisory feedback.
	Check string `yaml:"check" json:"-"`
}

// DraftKey is the storage key of the learner's editor text for this exercise.
func (e *Exercise) DraftKey() string {
	return DraftKey(e.ID)
}

// DraftKey returns the storage key for an exercise draft.
func DraftKey(id int) string {
	return fmt.Sprintf("sql_code_exercise_%d", id)
}

// Hint returns the hint with the given ID.
func (e *Exercise) Hint(id int) (Hint, error) {
	for _, h := range e.Hints {
		if h.ID == id {
			return h, nil
		}
	}
	return Hint{}, fmt.Errorf("%w: exercise %d has no hint %d", ErrHintNotFound, e.ID, id)
}

// PromptMarkdown converts the HTML prompt to Markdown for terminal output.
// Exercises without an HTML prompt fall back to the description.
func (e *Exercise) PromptMarkdown() (string, error) {
	if strings.TrimSpace(e.PromptHTML) == "" {
		return e.Description, nil
	}
	md, err := htmltomarkdown.ConvertString(e.PromptHTML)
	if err != nil {
		return "", fmt.Errorf("failed to convert prompt of exercise %d: %w", e.ID, err)
	}
	return strings.TrimSpace(md), nil
}

// PromptText extracts the plain text of the HTML prompt with whitespace collapsed.
func (e *Exercise) PromptText() string {
	if strings.TrimSpace(e.PromptHTML) == "" {
		return e.Description
	}
	doc, err := html.Parse(strings.NewReader(e.PromptHTML))
	if err != nil {
		return e.Description
	}
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func (e *Exercise) validate() []error {
	var errs []error
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, fmt.Errorf("exercise %d: title is required", e.ID))
	}
	if len(e.ExpectedColumns) == 0 {
		errs = append(errs, fmt.Errorf("exercise %d: expected_columns must not be empty", e.ID))
	}
	for _, col := range e.ExpectedColumns {
		if strings.TrimSpace(col) == "" {
			errs = append(errs, fmt.Errorf("exercise %d: blank expected column", e.ID))
		}
	}

	hintIDs := make(map[int]bool)
	for _, h := range e.Hints {
		if hintIDs[h.ID] {
			errs = append(errs, fmt.Errorf("exercise %d: duplicate hint id %d", e.ID, h.ID))
		}
		hintIDs[h.ID] = true
		if !h.Level.Valid() {
			errs = append(errs, fmt.Errorf("exercise %d hint %d: invalid level %q", e.ID, h.ID, h.Level))
		}
	}
	return errs
}
