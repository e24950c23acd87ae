package quiz

// Dimension is one of the strategy buckets the recommendation quiz
// accumulates points into. The set is closed; Dimensions lists them in
// declaration order, which is also the tie-break order when scoring.
type Dimension string

const (
	FoundationFirst Dimension = "foundationFirst"
	CustomerCentric Dimension = "customerCentric"
	GrowthFocused   Dimension = "growthFocused"
	CommunityLed    Dimension = "communityLed"
)

var Dimensions = []Dimension{FoundationFirst, CustomerCentric, GrowthFocused, CommunityLed}

// Points carries one weight per dimension. Using a struct instead of a
// map means an option referencing an unknown dimension does not compile.
type Points struct {
	FoundationFirst int `json:"foundationFirst"`
	CustomerCentric int `json:"customerCentric"`
	GrowthFocused   int `json:"growthFocused"`
	CommunityLed    int `json:"communityLed"`
}

func (p Points) value(d Dimension) int {
	switch d {
	case FoundationFirst:
		return p.FoundationFirst
	case CustomerCentric:
		return p.CustomerCentric
	case GrowthFocused:
		return p.GrowthFocused
	case CommunityLed:
		return p.CommunityLed
	}
	return 0
}

type QuestionType string

const (
	SingleChoice   QuestionType = "single"
	MultipleChoice QuestionType = "multiple"
)

type Option struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Points Points `json:"points"`
}

type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []Option     `json:"options"`
}

// Quiz is a recommendation quiz. StrategyKey names the progress field the
// winning dimension is cached under (e.g. "networkingStrategy" persists as
// "networkingStrategyRecommendation").
type Quiz struct {
	StrategyKey string     `json:"strategyKey"`
	Questions   []Question `json:"questions"`
}

// RecommendationKey is the progress-document key the scored result is
// cached under.
func (q Quiz) RecommendationKey() string {
	return q.StrategyKey + "Recommendation"
}

// Score folds the selected options into per-dimension accumulators and
// returns the dimension with the greatest total. Ties go to the dimension
// declared first. Question or option ids in answers that do not exist in
// the quiz are ignored. Accumulation is commutative, so the result does not
// depend on map iteration order.
func Score(q Quiz, answers map[string][]string) Dimension {
	totals := map[Dimension]int{}
	for _, d := range Dimensions {
		totals[d] = 0
	}
	for _, question := range q.Questions {
		selected, ok := answers[question.ID]
		if !ok {
			continue
		}
		for _, optID := range selected {
			for _, opt := range question.Options {
				if opt.ID != optID {
					continue
				}
				for _, d := range Dimensions {
					totals[d] += opt.Points.value(d)
				}
				break
			}
		}
	}
	winner := Dimensions[0]
	best := totals[winner]
	for _, d := range Dimensions[1:] {
		if totals[d] > best {
			winner = d
			best = totals[d]
		}
	}
	return winner
}
