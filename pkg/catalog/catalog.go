// Package catalog loads the exercise catalog: prompts, expected result
// columns, progressive hints and reference solutions.
//
// The default catalog is embedded in the binary. A directory holding an
// exercises.yaml file can replace it at runtime.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileName is the catalog file looked up in a catalog directory.
const FileName = "exercises.yaml"

//go:embed exercises.yaml
var embedded embed.FS

// ErrExerciseNotFound is returned when an exercise ID is not in the catalog.
var ErrExerciseNotFound = errors.New("exercise not found")

// ErrHintNotFound is returned when a hint ID is not defined for an exercise.
var ErrHintNotFound = errors.New("hint not found")

// Catalog is an ordered, immutable set of exercises.
type Catalog struct {
	exercises []*Exercise
	byID      map[int]*Exercise
	source    string
}

type catalogFile struct {
	Exercises []*Exercise `yaml:"exercises"`
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	cat, err := Load(embedded)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded catalog: %w", err)
	}
	cat.source = "embedded"
	return cat, nil
}

// LoadDir loads exercises.yaml from a directory.
func LoadDir(dir string) (*Catalog, error) {
	cat, err := Load(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	cat.source = dir
	return cat, nil
}

// Load reads and validates exercises.yaml from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(file.Exercises)
}

// New builds a validated catalog from exercises. Exercises are ordered by ID.
func New(exercises []*Exercise) (*Catalog, error) {
	// A bare "-" list item decodes to nil and cannot be ordered.
	var empty []error
	for i, ex := range exercises {
		if ex == nil {
			empty = append(empty, fmt.Errorf("exercise #%d: empty entry", i+1))
		}
	}
	if len(empty) > 0 {
		return nil, errors.Join(empty...)
	}

	c := &Catalog{
		exercises: make([]*Exercise, len(exercises)),
		byID:      make(map[int]*Exercise, len(exercises)),
	}
	copy(c.exercises, exercises)
	sort.SliceStable(c.exercises, func(i, j int) bool {
		return c.exercises[i].ID < c.exercises[j].ID
	})
	for _, ex := range c.exercises {
		c.byID[ex.ID] = ex
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks catalog invariants and returns every problem found.
func (c *Catalog) Validate() error {
	if len(c.exercises) == 0 {
		return fmt.Errorf("catalog has no exercises")
	}

	var errs []error
	seen := make(map[int]bool)
	for i, ex := range c.exercises {
		if ex == nil {
			errs = append(errs, fmt.Errorf("exercise #%d: empty entry", i+1))
			continue
		}
		if ex.ID <= 0 {
			errs = append(errs, fmt.Errorf("exercise %q: id must be positive, got %d", ex.Title, ex.ID))
		}
		if seen[ex.ID] {
			errs = append(errs, fmt.Errorf("exercise %d: duplicate id", ex.ID))
		}
		seen[ex.ID] = true
		errs = append(errs, ex.validate()...)
	}
	return errors.Join(errs...)
}

// List returns the exercises ordered by ID.
func (c *Catalog) List() []*Exercise {
	out := make([]*Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// IDs returns the exercise IDs in order.
func (c *Catalog) IDs() []int {
	ids := make([]int, len(c.exercises))
	for i, ex := range c.exercises {
		ids[i] = ex.ID
	}
	return ids
}

// Get returns the exercise with the given ID.
func (c *Catalog) Get(id int) (*Exercise, error) {
	ex, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrExerciseNotFound, id)
	}
	return ex, nil
}

// Len returns the number of exercises.
func (c *Catalog) Len() int {
	return len(c.exercises)
}

// Source describes where the catalog was loaded from.
func (c *Catalog) Source() string {
	if c.source == "" {
		return "inline"
	}
	return c.source
}
