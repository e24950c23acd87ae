package quiz

import "testing"

func sampleQuiz() Quiz {
	return Quiz{
		StrategyKey: "networkingStrategy",
		Questions: []Question{
			{
				ID:   "q1",
				Type: SingleChoice,
				Options: []Option{
					{ID: "a", Points: Points{FoundationFirst: 2}},
					{ID: "b", Points: Points{CustomerCentric: 3}},
				},
			},
			{
				ID:   "q2",
				Type: MultipleChoice,
				Options: []Option{
					{ID: "a", Points: Points{GrowthFocused: 1}},
					{ID: "b", Points: Points{CommunityLed: 2}},
					{ID: "c", Points: Points{FoundationFirst: 1, CustomerCentric: 1}},
				},
			},
		},
	}
}

func TestScore_SingleAnswerWins(t *testing.T) {
	q := Quiz{
		StrategyKey: "networkingStrategy",
		Questions: []Question{{
			ID:   "q1",
			Type: SingleChoice,
			Options: []Option{
				{ID: "a", Points: Points{FoundationFirst: 2, CustomerCentric: 0}},
				{ID: "b", Points: Points{FoundationFirst: 0, CustomerCentric: 3}},
			},
		}},
	}
	if got := Score(q, map[string][]string{"q1": {"b"}}); got != CustomerCentric {
		t.Fatalf("expected customerCentric, got %s", got)
	}
}

func TestScore_Deterministic(t *testing.T) {
	q := sampleQuiz()
	answers := map[string][]string{"q1": {"b"}, "q2": {"a", "c"}}
	first := Score(q, answers)
	for i := 0; i < 50; i++ {
		// Rebuild the map each round so iteration order can vary.
		again := map[string][]string{"q2": {"a", "c"}, "q1": {"b"}}
		if got := Score(q, again); got != first {
			t.Fatalf("run %d: got %s, want %s", i, got, first)
		}
	}
}

func TestScore_TieBreakFirstDeclared(t *testing.T) {
	q := Quiz{
		StrategyKey: "networkingStrategy",
		Questions: []Question{{
			ID:   "q1",
			Type: SingleChoice,
			Options: []Option{
				{ID: "a", Points: Points{FoundationFirst: 2, CustomerCentric: 2}},
			},
		}},
	}
	if got := Score(q, map[string][]string{"q1": {"a"}}); got != FoundationFirst {
		t.Fatalf("tie must go to first declared dimension, got %s", got)
	}
}

func TestScore_UnknownIDsIgnored(t *testing.T) {
	q := sampleQuiz()
	answers := map[string][]string{
		"q1":      {"b", "nope"},
		"ghost":   {"a"},
		"q2":      {"b"},
		"another": {"x", "y"},
	}
	want := Score(q, map[string][]string{"q1": {"b"}, "q2": {"b"}})
	if got := Score(q, answers); got != want {
		t.Fatalf("unknown ids must be no-ops: got %s, want %s", got, want)
	}
}

func TestScore_NoAnswers(t *testing.T) {
	if got := Score(sampleQuiz(), nil); got != FoundationFirst {
		t.Fatalf("empty answers must fall back to first dimension, got %s", got)
	}
}

func TestRecommendationKey(t *testing.T) {
	q := sampleQuiz()
	if got := q.RecommendationKey(); got != "networkingStrategyRecommendation" {
		t.Fatalf("unexpected key %q", got)
	}
}
