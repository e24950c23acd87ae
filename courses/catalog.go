package courses

import "inrooms-backend/quiz"

// Catalog holds the courses available to members, keyed by course key.
type Catalog struct {
	courses map[string]*Course
	order   []string
}

func NewCatalog(courses ...*Course) *Catalog {
	cat := &Catalog{courses: map[string]*Course{}}
	for _, c := range courses {
		if _, ok := cat.courses[c.Key]; ok {
			continue
		}
		cat.courses[c.Key] = c
		cat.order = append(cat.order, c.Key)
	}
	return cat
}

func (c *Catalog) Course(key string) (*Course, bool) {
	course, ok := c.courses[key]
	return course, ok
}

func (c *Catalog) Courses() []*Course {
	out := make([]*Course, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.courses[key])
	}
	return out
}

// DefaultCatalog builds the course content shipped with the product.
// Content is defined at build time and never mutated at runtime.
func DefaultCatalog() (*Catalog, error) {
	foundations, err := networkingFoundations()
	if err != nil {
		return nil, err
	}
	return NewCatalog(foundations), nil
}

func networkingFoundations() (*Course, error) {
	modules := []Module{
		{
			ID:          "welcome",
			Order:       0,
			Title:       "Welcome to inRooms",
			Description: "What Rooms are and how members use them to build a professional network.",
			Sections: []Section{
				{Kind: SectionWelcome, Title: "Why Rooms work", Body: "Small, curated video rooms beat large networking events because every attendee has a reason to be there."},
				{Kind: SectionContent, Title: "How this course works", Body: "Seven short modules. Each one ends with an action you can take the same day."},
			},
		},
		{
			ID:          "profile",
			Order:       1,
			Title:       "Your Member Profile",
			Description: "A profile that tells other members why they should meet you.",
			Sections: []Section{
				{Kind: SectionContent, Title: "The one-line positioning", Body: "Lead with the problem you solve, not your job title."},
				{Kind: SectionContent, Title: "Signals that build trust", Body: "A real photo, a verified email and two concrete accomplishments."},
			},
		},
		{
			ID:          "first-room",
			Order:       2,
			Title:       "Joining Your First Room",
			Description: "Choosing the right event and showing up prepared.",
			Sections: []Section{
				{Kind: SectionContent, Title: "Reading the room card", Body: "Topic, host, and attendee mix tell you whether the event fits your goals."},
				{Kind: SectionContent, Title: "The two-question prep", Body: "Know what you want to learn and what you can offer before you join."},
			},
			Tools: []string{"event-planner", "icebreaker-prompts"},
		},
		{
			ID:          "strategy",
			Order:       3,
			Title:       "Finding Your Networking Strategy",
			Description: "A short quiz that recommends the strategy that fits how you work.",
			Sections: []Section{
				{Kind: SectionContent, Title: "Four ways to grow a network", Body: "Foundation-first, customer-centric, growth-focused and community-led approaches all work. Pick the one you will actually sustain."},
			},
			Quiz: &quiz.Quiz{
				StrategyKey: "networkingStrategy",
				Questions: []quiz.Question{
					{
						ID:   "pace",
						Text: "How do you prefer to build new relationships?",
						Type: quiz.SingleChoice,
						Options: []quiz.Option{
							{ID: "slow-deep", Text: "Slowly, a few deep connections at a time", Points: quiz.Points{FoundationFirst: 2, CommunityLed: 1}},
							{ID: "customer-led", Text: "Through the people I already serve", Points: quiz.Points{CustomerCentric: 2}},
							{ID: "volume", Text: "Meet many people fast, filter later", Points: quiz.Points{GrowthFocused: 2}},
						},
					},
					{
						ID:   "goal",
						Text: "What should your network do for you this year?",
						Type: quiz.SingleChoice,
						Options: []quiz.Option{
							{ID: "referrals", Text: "Send referrals from happy clients", Points: quiz.Points{CustomerCentric: 2, FoundationFirst: 1}},
							{ID: "reach", Text: "Open doors in new markets", Points: quiz.Points{GrowthFocused: 2}},
							{ID: "belonging", Text: "Give me a peer group that keeps me sharp", Points: quiz.Points{CommunityLed: 2, FoundationFirst: 1}},
						},
					},
					{
						ID:   "time",
						Text: "Which activities are you willing to commit to weekly?",
						Type: quiz.MultipleChoice,
						Options: []quiz.Option{
							{ID: "followups", Text: "Personal follow-ups after every event", Points: quiz.Points{FoundationFirst: 1, CustomerCentric: 1}},
							{ID: "hosting", Text: "Hosting or co-hosting a Room", Points: quiz.Points{CommunityLed: 2}},
							{ID: "outbound", Text: "Cold outreach to new prospects", Points: quiz.Points{GrowthFocused: 1}},
						},
					},
				},
			},
		},
		{
			ID:          "outreach",
			Order:       4,
			Title:       "The Outreach Checklist",
			Description: "Everything to have in place before you start inviting people.",
			Sections: []Section{
				{Kind: SectionContent, Title: "Why a checklist", Body: "Outreach without follow-through burns contacts. Finish the required items before moving on."},
			},
			Checklist: []ChecklistItem{
				{ID: "positioning-line", Text: "Write your one-line positioning", Required: true},
				{ID: "profile-complete", Text: "Complete your member profile", Required: true},
				{ID: "first-event", Text: "Register for one upcoming Room", Required: true},
				{ID: "calendar-block", Text: "Block two hours a week for follow-ups", Required: false, Description: "Optional but strongly recommended."},
				{ID: "crm-sheet", Text: "Set up a simple contact tracker", Required: false},
			},
		},
		{
			ID:          "measure",
			Order:       5,
			Title:       "Measuring What Matters",
			Description: "Simple metrics that show whether your network is compounding.",
			Sections: []Section{
				{Kind: SectionContent, Title: "Three numbers", Body: "Conversations started, second meetings booked, and introductions made for others."},
			},
			Tools: []string{"metrics-template"},
		},
		{
			ID:          "certification",
			Order:       6,
			Title:       "Wrap-up and Certification",
			Description: "Review, badge and where to go next.",
			Sections: []Section{
				{Kind: SectionConclusion, Title: "You are ready", Body: "Complete the course to earn the Networker badge and points on your profile."},
			},
		},
	}
	return NewCourse("networking-foundations", "Networking Foundations", "networker", 100, modules)
}
