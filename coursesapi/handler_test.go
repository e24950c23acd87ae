package coursesapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"inrooms-backend/courses"
	"inrooms-backend/login"
	"inrooms-backend/progress"
	"inrooms-backend/subscriptions"
)

type fakeStates struct {
	state    *subscriptions.State
	consumed int
	badges   []string
}

func (f *fakeStates) Get(userID int) (*subscriptions.State, error) { return f.state, nil }
func (f *fakeStates) EnsureTrial(userID int) error                 { return nil }
func (f *fakeStates) ConsumeCourseCredit(userID int) (bool, error) {
	if f.state == nil || f.state.CourseCreditsUsed >= f.state.CourseCreditsQuota {
		return false, nil
	}
	f.state.CourseCreditsUsed++
	f.consumed++
	return true, nil
}
func (f *fakeStates) AwardBadge(userID int, courseKey, badge string, points int) error {
	f.badges = append(f.badges, badge)
	return nil
}

type env struct {
	router *gin.Engine
	store  *progress.Store
	states *fakeStates
}

func setup(t *testing.T, role string, state *subscriptions.State) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	catalog, err := courses.DefaultCatalog()
	if err != nil {
		t.Fatalf("course catalog: %v", err)
	}
	store := progress.NewStore(progress.NewMemoryBackend())
	states := &fakeStates{state: state}
	members := func(mail string) *Member {
		if mail == "ana@example.com" {
			return &Member{ID: 7, Email: mail, Role: role}
		}
		return nil
	}
	r := gin.New()
	NewHandler(catalog, store, states, members).RegisterRoutes(r)
	return &env{router: r, store: store, states: states}
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, _, err := login.IssueToken("ana@example.com", false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func activeState() *subscriptions.State {
	return &subscriptions.State{
		UserID: 7, Status: subscriptions.StatusActive,
		CourseCreditsQuota: 3, CourseCreditsUsed: 0,
	}
}

func TestTrialSeesOnlyFirstModule(t *testing.T) {
	e := setup(t, "member", &subscriptions.State{UserID: 7, Status: subscriptions.StatusTrial})
	if w := do(t, e.router, http.MethodGet, "/courses/networking-foundations/modules/welcome", ""); w.Code != http.StatusOK {
		t.Fatalf("trial should see the first module, got %d: %s", w.Code, w.Body.String())
	}
	if w := do(t, e.router, http.MethodGet, "/courses/networking-foundations/modules/profile", ""); w.Code != http.StatusPaymentRequired {
		t.Fatalf("trial must not see later modules, got %d", w.Code)
	}
}

func TestAdminAlwaysHasAccess(t *testing.T) {
	e := setup(t, "admin", nil)
	w := do(t, e.router, http.MethodGet, "/courses/networking-foundations/modules/certification", "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin should see every module, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUnknownModuleRedirectsToCourse(t *testing.T) {
	e := setup(t, "admin", nil)
	w := do(t, e.router, http.MethodGet, "/courses/networking-foundations/modules/ghost", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/courses/networking-foundations") {
		t.Fatalf("expected redirect hint, got %s", w.Body.String())
	}
}

func TestAdvanceMarksCurrentModule(t *testing.T) {
	e := setup(t, "member", activeState())
	w := do(t, e.router, http.MethodPost, "/courses/networking-foundations/modules/welcome/advance", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	doc := e.store.Load(7, "networking-foundations")
	if !doc.ModuleCompleted("welcome") {
		t.Fatal("advancing must complete the module being left")
	}
	if doc.ModuleCompleted("profile") {
		t.Fatal("the destination module must stay incomplete")
	}
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Data["next"] != "profile" {
		t.Fatalf("expected next=profile, got %v", body.Data["next"])
	}
}

func TestChecklistBlocksAdvance(t *testing.T) {
	e := setup(t, "admin", nil)
	w := do(t, e.router, http.MethodPost, "/courses/networking-foundations/modules/outreach/advance", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 with unchecked required items, got %d", w.Code)
	}

	for _, item := range []string{"positioning-line", "profile-complete", "first-event"} {
		w := do(t, e.router, http.MethodPost, "/courses/networking-foundations/checklist",
			`{"item_id":"`+item+`","checked":true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("toggle %s failed: %d %s", item, w.Code, w.Body.String())
		}
	}
	if w := do(t, e.router, http.MethodPost, "/courses/networking-foundations/modules/outreach/advance", ""); w.Code != http.StatusOK {
		t.Fatalf("all required items checked, expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestQuizSubmitCachesRecommendation(t *testing.T) {
	e := setup(t, "admin", nil)
	payload := `{"answers":{"pace":["customer-led"],"goal":["referrals"],"time":["followups"]}}`
	w := do(t, e.router, http.MethodPost, "/courses/networking-foundations/modules/strategy/quiz", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "customerCentric") {
		t.Fatalf("expected customerCentric recommendation, got %s", w.Body.String())
	}
	doc := e.store.Load(7, "networking-foundations")
	if doc.Recommendation("networkingStrategyRecommendation") != "customerCentric" {
		t.Fatalf("recommendation not cached: %v", doc)
	}
}

func TestCompleteCourseAwardsBadge(t *testing.T) {
	e := setup(t, "admin", nil)
	catalog, _ := courses.DefaultCatalog()
	course, _ := catalog.Course("networking-foundations")
	merge := progress.Document{}
	for _, m := range course.Modules() {
		merge[progress.CompletedKey(m.ID)] = true
	}
	if _, err := e.store.Save(7, course.Key, merge); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	w := do(t, e.router, http.MethodPost, "/courses/networking-foundations/complete", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(e.states.badges) != 1 || e.states.badges[0] != "networker" {
		t.Fatalf("expected the networker badge, got %v", e.states.badges)
	}
	doc := e.store.Load(7, course.Key)
	if !doc.CourseCompleted() {
		t.Fatal("course should be flagged completed")
	}
	// Completed courses stay open for review regardless of credits.
	if w := do(t, e.router, http.MethodGet, "/courses/networking-foundations/modules/certification", ""); w.Code != http.StatusOK {
		t.Fatalf("review access broken: %d", w.Code)
	}
}

func TestCompleteCourseRequiresAllModules(t *testing.T) {
	e := setup(t, "admin", nil)
	w := do(t, e.router, http.MethodPost, "/courses/networking-foundations/complete", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 with incomplete modules, got %d", w.Code)
	}
}

func TestStartCourseConsumesOneCredit(t *testing.T) {
	e := setup(t, "member", activeState())
	for i := 0; i < 2; i++ {
		w := do(t, e.router, http.MethodPost, "/courses/networking-foundations/start", "")
		if w.Code != http.StatusOK {
			t.Fatalf("start #%d: expected 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
	}
	if e.states.consumed != 1 {
		t.Fatalf("starting twice must consume exactly one credit, got %d", e.states.consumed)
	}
}
