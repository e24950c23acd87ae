package courses

import (
	"fmt"
	"sort"

	"inrooms-backend/quiz"
)

type SectionKind string

const (
	SectionWelcome    SectionKind = "welcome"
	SectionContent    SectionKind = "section"
	SectionConclusion SectionKind = "conclusion"
)

type Section struct {
	Kind  SectionKind `json:"kind"`
	Title string      `json:"title"`
	Body  string      `json:"body"`
}

type ChecklistItem struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Module is one sequential unit of a course. ID doubles as the progress
// key and the URL segment; Order defines the sequence and must be
// contiguous and unique within a course.
type Module struct {
	ID          string          `json:"id"`
	Order       int             `json:"order"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Sections    []Section       `json:"sections"`
	Quiz        *quiz.Quiz      `json:"quiz,omitempty"`
	Checklist   []ChecklistItem `json:"checklist,omitempty"`
	Tools       []string        `json:"tools,omitempty"`
}

// Course groups an ordered set of modules under a stable key. Badge and
// BadgePoints are awarded to the member's profile on completion.
type Course struct {
	Key         string
	Title       string
	Badge       string
	BadgePoints int
	modules     []Module
}

// NewCourse validates the module sequence at construction time: ids must
// be unique and orders must run 0..n-1 without gaps. A broken sequence is
// a build defect, so it fails here instead of producing wrong navigation
// at runtime.
func NewCourse(key, title, badge string, badgePoints int, modules []Module) (*Course, error) {
	if len(modules) == 0 {
		return nil, fmt.Errorf("course %s: no modules", key)
	}
	sorted := append([]Module(nil), modules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	seen := map[string]bool{}
	for i, m := range sorted {
		if m.ID == "" {
			return nil, fmt.Errorf("course %s: module at order %d has empty id", key, m.Order)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("course %s: duplicate module id %q", key, m.ID)
		}
		seen[m.ID] = true
		if m.Order != i {
			return nil, fmt.Errorf("course %s: module orders must be contiguous from 0, got %d at position %d", key, m.Order, i)
		}
	}
	return &Course{Key: key, Title: title, Badge: badge, BadgePoints: badgePoints, modules: sorted}, nil
}

func (c *Course) Modules() []Module {
	return append([]Module(nil), c.modules...)
}

func (c *Course) Len() int { return len(c.modules) }

// Module returns the module with the given id.
func (c *Course) Module(id string) (Module, bool) {
	for _, m := range c.modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}
