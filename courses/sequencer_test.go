package courses

import (
	"errors"
	"testing"

	"inrooms-backend/progress"
)

func testCourse(t *testing.T, n int) *Course {
	t.Helper()
	modules := make([]Module, n)
	ids := []string{"welcome", "profile", "first-room", "strategy", "outreach", "measure", "certification"}
	for i := 0; i < n; i++ {
		modules[i] = Module{ID: ids[i], Order: i, Title: ids[i]}
	}
	c, err := NewCourse("networking-foundations", "Networking Foundations", "networker", 100, modules)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewCourse_Validation(t *testing.T) {
	cases := []struct {
		name    string
		modules []Module
	}{
		{"empty", nil},
		{"gap in orders", []Module{{ID: "a", Order: 0}, {ID: "b", Order: 2}}},
		{"duplicate order", []Module{{ID: "a", Order: 0}, {ID: "b", Order: 0}}},
		{"duplicate id", []Module{{ID: "a", Order: 0}, {ID: "a", Order: 1}}},
		{"not starting at zero", []Module{{ID: "a", Order: 1}, {ID: "b", Order: 2}}},
		{"empty id", []Module{{ID: "", Order: 0}}},
	}
	for _, tc := range cases {
		if _, err := NewCourse("c", "C", "b", 0, tc.modules); err == nil {
			t.Errorf("%s: expected construction error", tc.name)
		}
	}
}

func TestCurrent(t *testing.T) {
	c := testCourse(t, 7)
	m, err := c.Current("")
	if err != nil || m.Order != 0 {
		t.Fatalf("empty id must resolve to order 0, got %v err=%v", m, err)
	}
	m, err = c.Current("strategy")
	if err != nil || m.ID != "strategy" {
		t.Fatalf("lookup by id failed: %v err=%v", m, err)
	}
	if _, err := c.Current("nope"); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("unknown id must return ErrModuleNotFound, got %v", err)
	}
}

func TestNextPrevious(t *testing.T) {
	c := testCourse(t, 3)
	first, _ := c.Current("")
	second, ok := c.Next(first)
	if !ok || second.Order != 1 {
		t.Fatalf("next of first: %v ok=%t", second, ok)
	}
	if back, ok := c.Previous(second); !ok || back.ID != first.ID {
		t.Fatalf("previous of second: %v ok=%t", back, ok)
	}
	last, _ := c.Current(c.modules[2].ID)
	if _, ok := c.Next(last); ok {
		t.Fatal("next of last must be none")
	}
	if _, ok := c.Previous(first); ok {
		t.Fatal("previous of first must be none")
	}
}

func TestCompletionPercentage_SevenModules(t *testing.T) {
	c := testCourse(t, 7)
	doc := progress.Document{
		"welcomeCompleted":    true,
		"profileCompleted":    true,
		"first-roomCompleted": true,
	}
	if got := c.CompletionPercentage(doc); got != 43 {
		t.Fatalf("3 of 7 modules must round to 43, got %d", got)
	}
}

func TestCompletionPercentage_Monotonic(t *testing.T) {
	c := testCourse(t, 7)
	doc := progress.Document{}
	prev := c.CompletionPercentage(doc)
	if prev != 0 {
		t.Fatalf("empty progress must be 0%%, got %d", prev)
	}
	for _, m := range c.Modules() {
		doc[progress.CompletedKey(m.ID)] = true
		pct := c.CompletionPercentage(doc)
		if pct < prev {
			t.Fatalf("percentage decreased from %d to %d", prev, pct)
		}
		prev = pct
	}
	if prev != 100 {
		t.Fatalf("all modules complete must be 100%%, got %d", prev)
	}
}

func TestGoToNext_MarksCurrentNotNext(t *testing.T) {
	c := testCourse(t, 3)
	store := progress.NewStore(progress.NewMemoryBackend())
	current, _ := c.Current("")

	next, ok, err := c.GoToNext(store, 7, current)
	if err != nil || !ok {
		t.Fatalf("GoToNext: ok=%t err=%v", ok, err)
	}
	doc := store.Load(7, c.Key)
	if !doc.ModuleCompleted(current.ID) {
		t.Fatal("current module must be marked completed on transition")
	}
	if doc.ModuleCompleted(next.ID) {
		t.Fatal("arriving on a module must not mark it completed")
	}
}

func TestGoToNext_LastModule(t *testing.T) {
	c := testCourse(t, 2)
	store := progress.NewStore(progress.NewMemoryBackend())
	last, _ := c.Current("profile")
	next, ok, err := c.GoToNext(store, 1, last)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("no module after last, got %v", next)
	}
	if !store.Load(1, c.Key).ModuleCompleted("profile") {
		t.Fatal("last module must still be marked completed")
	}
}

func TestDefaultCatalog(t *testing.T) {
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	course, ok := cat.Course("networking-foundations")
	if !ok {
		t.Fatal("networking-foundations course missing")
	}
	if course.Len() != 7 {
		t.Fatalf("expected 7 modules, got %d", course.Len())
	}
	hasQuiz, hasChecklist := false, false
	for _, m := range course.Modules() {
		if m.Quiz != nil {
			hasQuiz = true
		}
		if len(m.Checklist) > 0 {
			hasChecklist = true
		}
	}
	if !hasQuiz || !hasChecklist {
		t.Fatalf("course content must include a quiz and a checklist module (quiz=%t checklist=%t)", hasQuiz, hasChecklist)
	}
}
