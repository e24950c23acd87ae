package progress

// Document is the per-course progress record. The layout mirrors what the
// web client persists: "<moduleID>Completed" booleans, "quizAnswers",
// "checklistItems", "<strategyKey>Recommendation", "courseCompleted" and a
// "version" stamp added by the store on every save.
type Document map[string]any

const (
	// SchemaVersion is stamped into every saved document. Documents
	// written before versioning existed carry no "version" key and are
	// treated as version 0 on load.
	SchemaVersion = 1

	keyVersion         = "version"
	keyQuizAnswers     = "quizAnswers"
	keyChecklistItems  = "checklistItems"
	keyCourseCompleted = "courseCompleted"
)

func CompletedKey(moduleID string) string { return moduleID + "Completed" }

func (d Document) ModuleCompleted(moduleID string) bool {
	v, _ := d[CompletedKey(moduleID)].(bool)
	return v
}

func (d Document) CourseCompleted() bool {
	v, _ := d[keyCourseCompleted].(bool)
	return v
}

func (d Document) Recommendation(key string) string {
	v, _ := d[key].(string)
	return v
}

func (d Document) Version() int {
	switch v := d[keyVersion].(type) {
	case int:
		return v
	case float64: // JSON numbers decode as float64
		return int(v)
	}
	return 0
}

// QuizAnswers normalizes the stored answers back to questionID -> option
// ids. Values that survived a JSON round trip arrive as []any.
func (d Document) QuizAnswers() map[string][]string {
	out := map[string][]string{}
	raw, ok := d[keyQuizAnswers].(map[string]any)
	if !ok {
		if typed, ok := d[keyQuizAnswers].(map[string][]string); ok {
			for q, opts := range typed {
				out[q] = append([]string(nil), opts...)
			}
		}
		return out
	}
	for q, v := range raw {
		out[q] = toStrings(v)
	}
	return out
}

// ChecklistItems returns the flat list of checked item ids for the course.
func (d Document) ChecklistItems() []string {
	if typed, ok := d[keyChecklistItems].([]string); ok {
		return append([]string(nil), typed...)
	}
	return toStrings(d[keyChecklistItems])
}

func toStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// migrate upgrades a loaded document to the current schema version.
// Version 0 documents predate the version stamp; their layout is otherwise
// identical, so the upgrade only records the version.
func migrate(d Document) Document {
	if d.Version() < SchemaVersion {
		d[keyVersion] = SchemaVersion
	}
	return d
}
