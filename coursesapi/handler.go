package coursesapi

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inrooms-backend/access"
	"inrooms-backend/courses"
	"inrooms-backend/email"
	"inrooms-backend/login"
	"inrooms-backend/progress"
	"inrooms-backend/quiz"
	"inrooms-backend/subscriptions"
)

// Member is the authenticated-user projection the course pages need.
type Member struct {
	ID    int
	Email string
	Role  string
}

type MemberResolver func(email string) *Member

// StateSource is the subscription-record surface consumed here.
// Implemented by subscriptions.Repository.
type StateSource interface {
	Get(userID int) (*subscriptions.State, error)
	EnsureTrial(userID int) error
	ConsumeCourseCredit(userID int) (bool, error)
	AwardBadge(userID int, courseKey, badge string, points int) error
}

type Handler struct {
	catalog *courses.Catalog
	store   *progress.Store
	states  StateSource
	members MemberResolver
}

func NewHandler(catalog *courses.Catalog, store *progress.Store, states StateSource, members MemberResolver) *Handler {
	return &Handler{catalog: catalog, store: store, states: states, members: members}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/courses", h.listCourses)
	r.GET("/courses/:course", h.getCourse)
	r.GET("/courses/:course/progress", h.getProgress)
	r.POST("/courses/:course/start", h.startCourse)
	r.GET("/courses/:course/modules/:id", h.getModule)
	r.POST("/courses/:course/modules/:id/advance", h.advance)
	r.POST("/courses/:course/modules/:id/quiz", h.submitQuiz)
	r.POST("/courses/:course/checklist", h.toggleChecklist)
	r.POST("/courses/:course/complete", h.completeCourse)
}

func (h *Handler) member(c *gin.Context) *Member {
	auth := c.GetHeader("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return nil
	}
	mail, ok := login.GetEmailFromToken(token)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return nil
	}
	m := h.members(mail)
	if m == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil
	}
	return m
}

func (h *Handler) course(c *gin.Context) *courses.Course {
	key := c.Param("course")
	course, ok := h.catalog.Course(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown course"})
		return nil
	}
	return course
}

// account loads the subscription state and shapes it for the policy. The
// trial row is ensured first so new members always resolve to something.
func (h *Handler) account(m *Member) *access.Account {
	if err := h.states.EnsureTrial(m.ID); err != nil {
		log.Printf("[COURSES][account] ensure trial failed user=%d: %v", m.ID, err)
	}
	state, err := h.states.Get(m.ID)
	if err != nil {
		log.Printf("[COURSES][account] state read failed user=%d: %v", m.ID, err)
	}
	return access.ForState(m.Role, state)
}

func (h *Handler) listCourses(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	list := []gin.H{}
	for _, course := range h.catalog.Courses() {
		doc := h.store.Load(m.ID, course.Key)
		list = append(list, gin.H{
			"key":        course.Key,
			"title":      course.Title,
			"modules":    course.Len(),
			"completion": course.CompletionPercentage(doc),
			"completed":  doc.CourseCompleted(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) getCourse(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	course := h.course(c)
	if course == nil {
		return
	}
	doc := h.store.Load(m.ID, course.Key)
	modules := []gin.H{}
	for _, mod := range course.Modules() {
		modules = append(modules, gin.H{
			"id":            mod.ID,
			"order":         mod.Order,
			"title":         mod.Title,
			"description":   mod.Description,
			"completed":     doc.ModuleCompleted(mod.ID),
			"has_quiz":      mod.Quiz != nil,
			"has_checklist": len(mod.Checklist) > 0,
		})
	}
	current, _ := course.Current("")
	for _, mod := range course.Modules() {
		if !doc.ModuleCompleted(mod.ID) {
			current = mod
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"key":            course.Key,
		"title":          course.Title,
		"modules":        modules,
		"completion":     course.CompletionPercentage(doc),
		"completed":      doc.CourseCompleted(),
		"current_module": current.ID,
	}})
}

func (h *Handler) getProgress(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	course := h.course(c)
	if course == nil {
		return
	}
	doc := h.store.Load(m.ID, course.Key)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"progress":   doc,
		"completion": course.CompletionPercentage(doc),
	}})
}

// startCourse consumes one course credit the first time a member opens a
// course. Admins, unlimited plans and completed courses never consume.
func (h *Handler) startCourse(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	course := h.course(c)
	if course == nil {
		return
	}
	doc := h.store.Load(m.ID, course.Key)
	if started, _ := doc["creditConsumed"].(bool); started || doc.CourseCompleted() {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"started": true}})
		return
	}
	acct := h.account(m)
	if m.Role != access.RoleAdmin && acct.CourseCreditsQuota != subscriptions.UnlimitedQuota {
		consumed, err := h.states.ConsumeCourseCredit(m.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !consumed && !(acct.Status == subscriptions.StatusTrial) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "no course credits left"})
			return
		}
	}
	if _, err := h.store.Save(m.ID, course.Key, progress.Document{"creditConsumed": true}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[COURSES][start] user=%d course=%s", m.ID, course.Key)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"started": true}})
}

// resolveModule handles route id lookup; unknown ids answer 404 with the
// course root as redirect target instead of an error page.
func (h *Handler) resolveModule(c *gin.Context, course *courses.Course) (courses.Module, bool) {
	module, err := course.Current(c.Param("id"))
	if err != nil {
		if errors.Is(err, courses.ErrModuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "module not found", "redirect": "/courses/" + course.Key})
			return courses.Module{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return courses.Module{}, false
	}
	return module, true
}

func (h *Handler) gated(c *gin.Context, m *Member, course *courses.Course, module courses.Module, doc progress.Document) bool {
	if access.CanAccessModule(h.account(m), module, doc) {
		return true
	}
	log.Printf("[COURSES][deny] user=%d course=%s module=%s", m.ID, course.Key, module.ID)
	c.JSON(http.StatusPaymentRequired, gin.H{"error": "your plan does not include this module"})
	return false
}

func (h *Handler) getModule(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	course := h.course(c)
	if course == nil {
		return
	}
	module, ok := h.resolveModule(c, course)
	if !ok {
		return
	}
	doc := h.store.Load(m.ID, course.Key)
	if !h.gated(c, m, course, module, doc) {
		return
	}
	resp := gin.H{
		"module":     module,
		"completed":  doc.ModuleCompleted(module.ID),
		"completion": course.CompletionPercentage(doc),
	}
	if next, ok := course.Next(module); ok {
		resp["next"] = next.ID
	}
	if prev, ok := course.Previous(module); ok {
		resp["previous"] = prev.ID
	}
	if module.Quiz != nil {
		if rec := doc.Recommendation(module.Quiz.RecommendationKey()); rec != "" {
			resp["recommendation"] = rec
		}
	}
	if len(module.Checklist) > 0 {
		resp["checked_items"] = doc.ChecklistItems()
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// advance marks the current module completed and returns the next one.
// A module with a checklist blocks the transition until every required
// item is checked.
func (h *Handler) advance(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	course := h.course(c)
	if course == nil {
		return
	}
	module, ok := h.resolveModule(c, course)
	if !ok {
		return
	}
	doc := h.store.Load(m.ID, course.Key)
	if !h.gated(c, m, course, module, doc) {
		return
	}
	if len(module.Checklist) > 0 && !courses.CanAdvance(module.Checklist, doc.ChecklistItems()) {
		c.JSON(http.StatusConflict, gin.H{"error": "complete the required checklist items first"})
		return
	}
	next, hasNext, err := course.GoToNext(h.store, m.ID, module)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	doc = h.store.Load(m.ID, course.Key)
	resp := gin.H{"completion": course.CompletionPercentage(doc)}
	if hasNext {
		resp["next"] = next.ID
	} else {
		resp["last_module"] = true
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// submitQuiz scores the submitted answers and caches the recommendation.
// Re-submitting re-scores; the cached value never updates on its own.
func (h *Handler) submitQuiz(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	course := h.course(c)
	if course == nil {
		return
	}
	module, ok := h.resolveModule(c, course)
	if !ok {
		return
	}
	if module.Quiz == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "module has no quiz"})
		return
	}
	doc := h.store.Load(m.ID, course.Key)
	if !h.gated(c, m, course, module, doc) {
		return
	}
	var body struct {
		Answers map[string][]string `json:"answers"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || len(body.Answers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers required"})
		return
	}
	recommendation := quiz.Score(*module.Quiz, body.Answers)
	if _, err := h.store.Save(m.ID, course.Key, progress.Document{
		"quizAnswers":                   body.Answers,
		module.Quiz.RecommendationKey(): string(recommendation),
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[COURSES][quiz] user=%d course=%s module=%s recommendation=%s", m.ID, course.Key, module.ID, recommendation)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"recommendation": recommendation}})
}

func (h *Handler) toggleChecklist(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	course := h.course(c)
	if course == nil {
		return
	}
	var body struct {
		ItemID  string `json:"item_id"`
		Checked bool   `json:"checked"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id required"})
		return
	}
	doc := h.store.Load(m.ID, course.Key)
	items := courses.ToggleChecked(doc.ChecklistItems(), body.ItemID, body.Checked)
	if _, err := h.store.Save(m.ID, course.Key, progress.Document{"checklistItems": items}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"checked_items": items}})
}

// completeCourse flags the course done and awards the badge and points to
// the member's profile. Requires every module to be completed.
func (h *Handler) completeCourse(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	course := h.course(c)
	if course == nil {
		return
	}
	doc := h.store.Load(m.ID, course.Key)
	if course.CompletionPercentage(doc) != 100 {
		c.JSON(http.StatusConflict, gin.H{"error": "all modules must be completed first"})
		return
	}
	if _, err := h.store.Save(m.ID, course.Key, progress.Document{"courseCompleted": true}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.states.AwardBadge(m.ID, course.Key, course.Badge, course.BadgePoints); err != nil {
		log.Printf("[COURSES][complete] badge award failed user=%d course=%s: %v", m.ID, course.Key, err)
	}
	if err := email.SendCourseCompleted(m.Email, course.Title, course.Badge); err != nil {
		log.Printf("[COURSES][complete] completion email failed for %s: %v", m.Email, err)
	}
	log.Printf("[COURSES][complete] user=%d course=%s badge=%s", m.ID, course.Key, course.Badge)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"completed": true, "badge": course.Badge, "points": course.BadgePoints}})
}
