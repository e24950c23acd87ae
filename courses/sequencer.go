package courses

import (
	"errors"
	"math"

	"inrooms-backend/progress"
)

// ErrModuleNotFound signals a route with an id that matches no module.
// Handlers answer it by redirecting to the course root.
var ErrModuleNotFound = errors.New("module not found")

// Current resolves the module a route points at. An empty id means the
// course entry point, the module with order 0.
func (c *Course) Current(moduleID string) (Module, error) {
	if moduleID == "" {
		return c.modules[0], nil
	}
	if m, ok := c.Module(moduleID); ok {
		return m, nil
	}
	return Module{}, ErrModuleNotFound
}

// Next returns the module after current, or false when current is last.
func (c *Course) Next(current Module) (Module, bool) {
	if current.Order+1 >= len(c.modules) {
		return Module{}, false
	}
	return c.modules[current.Order+1], true
}

// Previous returns the module before current, or false when current is
// first.
func (c *Course) Previous(current Module) (Module, bool) {
	if current.Order == 0 {
		return Module{}, false
	}
	return c.modules[current.Order-1], true
}

// CompletionPercentage is the rounded share of modules flagged complete
// in the progress document.
func (c *Course) CompletionPercentage(doc progress.Document) int {
	completed := 0
	for _, m := range c.modules {
		if doc.ModuleCompleted(m.ID) {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(c.modules))))
}

// ProgressSaver is the slice of the progress store the sequencer needs.
type ProgressSaver interface {
	Save(userID int, courseKey string, partial progress.Document) (progress.Document, error)
}

// GoToNext marks the current module completed and returns the following
// one. The completion write happens as part of the transition, before the
// next module is resolved; arriving on a module never marks it.
func (c *Course) GoToNext(store ProgressSaver, userID int, current Module) (Module, bool, error) {
	if _, err := store.Save(userID, c.Key, progress.Document{
		progress.CompletedKey(current.ID): true,
	}); err != nil {
		return Module{}, false, err
	}
	next, ok := c.Next(current)
	return next, ok, nil
}
