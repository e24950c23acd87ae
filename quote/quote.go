package quote

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inrooms-backend/email"
)

// Request is an enterprise pricing inquiry. Custom plans have no checkout
// flow; sales follows up on these instead.
type Request struct {
	ID           int    `json:"id"`
	Company      string `json:"company"`
	ContactName  string `json:"contact_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	TeamSize     int    `json:"team_size"`
	Requirements string `json:"requirements,omitempty"`
	Timeline     string `json:"timeline,omitempty"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(q *Request) error {
	res, err := r.db.Exec(
		`INSERT INTO quote_requests (company, contact_name, email, phone, team_size, requirements, timeline)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.Company, q.ContactName, q.Email, q.Phone, q.TeamSize, q.Requirements, q.Timeline,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		q.ID = int(id)
	}
	return nil
}

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/quotes", h.Create)
}

// Create takes an enterprise quote request. No auth: the form sits on the
// public pricing page. The acknowledgement email is best-effort.
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Company = strings.TrimSpace(req.Company)
	req.ContactName = strings.TrimSpace(req.ContactName)
	req.Email = strings.TrimSpace(req.Email)
	if req.Company == "" || req.ContactName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company and contact_name are required"})
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
		return
	}
	if req.TeamSize < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "team_size cannot be negative"})
		return
	}
	if err := h.repo.Create(&req); err != nil {
		log.Printf("[QUOTE][create] insert failed company=%s: %v", req.Company, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save the request"})
		return
	}
	if err := email.SendQuoteAck(req.Email, req.Company); err != nil {
		log.Printf("[QUOTE][create] ack email failed for %s: %v", req.Email, err)
	}
	log.Printf("[QUOTE][create] id=%d company=%s team_size=%d", req.ID, req.Company, req.TeamSize)
	c.JSON(http.StatusCreated, gin.H{"data": req})
}
