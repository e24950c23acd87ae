package marketing

import (
	"database/sql"
	"log"
	"time"

	"inrooms-backend/email"
)

// Service nudges trial members whose free period is about to end.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Start launches a daily ticker that emails members whose trial ends
// within the next three days.
func (s *Service) Start() {
	ticker := time.NewTicker(24 * time.Hour)
	go func() {
		for range ticker.C {
			if err := s.notifyEndingTrials(); err != nil {
				log.Printf("[MARKETING] trial reminder pass failed: %v", err)
			}
		}
	}()
}

func (s *Service) notifyEndingTrials() error {
	rows, err := s.db.Query(`SELECT u.id, u.email, ss.trial_ends_at FROM users u
        JOIN subscription_state ss ON u.id = ss.user_id
        WHERE ss.status = 'trial'
          AND ss.trial_ends_at IS NOT NULL
          AND ss.trial_ends_at BETWEEN NOW() AND DATE_ADD(NOW(), INTERVAL 3 DAY)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var mail string
		var endsAt time.Time
		if err := rows.Scan(&id, &mail, &endsAt); err != nil {
			return err
		}
		daysLeft := int(time.Until(endsAt).Hours() / 24)
		if daysLeft < 0 {
			daysLeft = 0
		}
		if err := email.SendTrialEnding(mail, daysLeft); err != nil {
			log.Printf("[MARKETING] reminder email failed for %s: %v", mail, err)
		}
		log.Printf("[MARKETING] trial reminder sent user=%d days_left=%d", id, daysLeft)
	}
	return rows.Err()
}
