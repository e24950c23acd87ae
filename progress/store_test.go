package progress

import (
	"reflect"
	"testing"
)

func TestStore_MergeNotOverwrite(t *testing.T) {
	s := NewStore(NewMemoryBackend())
	if _, err := s.Save(1, "networking-foundations", Document{"a": 1.0}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(1, "networking-foundations", Document{"b": 2.0}); err != nil {
		t.Fatal(err)
	}
	doc := s.Load(1, "networking-foundations")
	if doc["a"] != 1.0 || doc["b"] != 2.0 {
		t.Fatalf("expected merged document, got %#v", doc)
	}
}

func TestStore_CorruptDocumentDegradesToEmpty(t *testing.T) {
	backend := NewMemoryBackend()
	if err := backend.Put(1, "networking-foundations", "{not json"); err != nil {
		t.Fatal(err)
	}
	s := NewStore(backend)
	doc := s.Load(1, "networking-foundations")
	if len(doc) != 0 {
		t.Fatalf("corrupt record must degrade to empty document, got %#v", doc)
	}
	// Saving afterwards starts a fresh document rather than failing.
	merged, err := s.Save(1, "networking-foundations", Document{"welcomeCompleted": true})
	if err != nil {
		t.Fatal(err)
	}
	if !merged.ModuleCompleted("welcome") {
		t.Fatalf("expected welcomeCompleted=true, got %#v", merged)
	}
}

func TestStore_MissingDocumentIsEmpty(t *testing.T) {
	s := NewStore(NewMemoryBackend())
	if doc := s.Load(42, "never-written"); len(doc) != 0 {
		t.Fatalf("expected empty document, got %#v", doc)
	}
}

func TestStore_CoursesDoNotCollide(t *testing.T) {
	s := NewStore(NewMemoryBackend())
	if _, err := s.Save(1, "course-a", Document{"introCompleted": true}); err != nil {
		t.Fatal(err)
	}
	if doc := s.Load(1, "course-b"); doc.ModuleCompleted("intro") {
		t.Fatal("progress leaked across course namespaces")
	}
	if doc := s.Load(2, "course-a"); doc.ModuleCompleted("intro") {
		t.Fatal("progress leaked across users")
	}
}

func TestStore_VersionStamp(t *testing.T) {
	backend := NewMemoryBackend()
	s := NewStore(backend)
	// Legacy document without a version field.
	if err := backend.Put(1, "networking-foundations", `{"introCompleted":true}`); err != nil {
		t.Fatal(err)
	}
	doc := s.Load(1, "networking-foundations")
	if doc.Version() != SchemaVersion {
		t.Fatalf("load must migrate legacy documents, version=%d", doc.Version())
	}
	saved, err := s.Save(1, "networking-foundations", Document{})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Version() != SchemaVersion {
		t.Fatalf("save must stamp version, got %d", saved.Version())
	}
}

func TestDocument_Accessors(t *testing.T) {
	// Shapes as they come back from a JSON round trip.
	doc := Document{
		"quizAnswers":                      map[string]any{"q1": []any{"a", "b"}},
		"checklistItems":                   []any{"item-1", "item-2"},
		"courseCompleted":                  true,
		"networkingStrategyRecommendation": "customerCentric",
	}
	if got := doc.QuizAnswers(); !reflect.DeepEqual(got["q1"], []string{"a", "b"}) {
		t.Fatalf("unexpected answers %#v", got)
	}
	if got := doc.ChecklistItems(); !reflect.DeepEqual(got, []string{"item-1", "item-2"}) {
		t.Fatalf("unexpected checklist %#v", got)
	}
	if !doc.CourseCompleted() {
		t.Fatal("courseCompleted accessor")
	}
	if doc.Recommendation("networkingStrategyRecommendation") != "customerCentric" {
		t.Fatal("recommendation accessor")
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	s := NewStore(NewMemoryBackend())
	if _, err := s.Save(1, "networking-foundations", Document{"checklistItems": []string{"a"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(1, "networking-foundations", Document{"checklistItems": []string{"b", "c"}}); err != nil {
		t.Fatal(err)
	}
	doc := s.Load(1, "networking-foundations")
	if got := doc.ChecklistItems(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("top-level keys must be replaced wholesale, got %#v", got)
	}
}
