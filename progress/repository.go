package progress

import (
	"database/sql"
	"strconv"
	"sync"
)

// Repository is the MySQL backend: one row per user+course holding the
// serialized document.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(userID int, courseKey string) (string, bool, error) {
	row := r.db.QueryRow(`SELECT doc FROM course_progress WHERE user_id=? AND course_key=? LIMIT 1`, userID, courseKey)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return raw, true, nil
}

func (r *Repository) Put(userID int, courseKey string, raw string) error {
	_, err := r.db.Exec(`INSERT INTO course_progress (user_id, course_key, doc) VALUES (?,?,?)
		ON DUPLICATE KEY UPDATE doc=VALUES(doc)`, userID, courseKey, raw)
	return err
}

// MemoryBackend keeps documents in a map. Used by tests and as a fallback
// when the service runs without a database.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: map[string]string{}}
}

func (m *MemoryBackend) key(userID int, courseKey string) string {
	return courseKey + "/" + strconv.Itoa(userID)
}

func (m *MemoryBackend) Get(userID int, courseKey string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[m.key(userID, courseKey)]
	return raw, ok, nil
}

func (m *MemoryBackend) Put(userID int, courseKey string, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[m.key(userID, courseKey)] = raw
	return nil
}
