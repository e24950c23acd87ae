package profile

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inrooms-backend/login"
	"inrooms-backend/migrations"
	"inrooms-backend/subscriptions"
)

// Records is the subscription-record surface the profile page reads.
// Implemented by subscriptions.Repository.
type Records interface {
	Get(userID int) (*subscriptions.State, error)
	EnsureTrial(userID int) error
	Badges(userID int) ([]subscriptions.Badge, error)
}

type Handler struct {
	records Records
}

func NewHandler(records Records) *Handler {
	return &Handler{records: records}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/profile", h.Get)
	r.PATCH("/profile", h.Update)
}

func (h *Handler) user(c *gin.Context) *migrations.User {
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
	u := migrations.GetUserByEmail(mail)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil
	}
	return u
}

// Get returns the member's profile together with the subscription record
// and earned badges. The trial row is ensured on first read so a fresh
// account always has a state to show.
func (h *Handler) Get(c *gin.Context) {
	u := h.user(c)
	if u == nil {
		return
	}
	if err := h.records.EnsureTrial(u.ID); err != nil {
		log.Printf("[PROFILE][get] ensure trial failed user=%d: %v", u.ID, err)
	}
	state, err := h.records.Get(u.ID)
	if err != nil {
		log.Printf("[PROFILE][get] state read failed user=%d: %v", u.ID, err)
	}
	badges, err := h.records.Badges(u.ID)
	if err != nil {
		log.Printf("[PROFILE][get] badges read failed user=%d: %v", u.ID, err)
	}
	points := 0
	for _, b := range badges {
		points += b.Points
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"id":             u.ID,
		"first_name":     u.FirstName,
		"last_name":      u.LastName,
		"email":          u.Email,
		"role":           u.Role,
		"email_verified": u.EmailVerified,
		"subscription":   state,
		"badges":         badges,
		"points":         points,
	}})
}

// Update applies a partial update to the profile. Only name fields are
// writable here; email and role changes go through dedicated flows.
func (h *Handler) Update(c *gin.Context) {
	u := h.user(c)
	if u == nil {
		return
	}
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	first, last := u.FirstName, u.LastName
	if req.FirstName != nil {
		first = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		last = strings.TrimSpace(*req.LastName)
	}
	if first == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "first_name cannot be empty"})
		return
	}
	if err := migrations.UpdateUserProfile(u.ID, first, last); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[PROFILE][update] user=%d", u.ID)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"id":         u.ID,
		"first_name": first,
		"last_name":  last,
		"email":      u.Email,
	}})
}
