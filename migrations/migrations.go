package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

type User struct {
	ID            int       `db:"id"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Email         string    `db:"email"`
	Password      string    `db:"password"`
	Role          string    `db:"role"`
	EmailVerified bool      `db:"email_verified"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

var db *sql.DB

// Init sets the DB connection for migrations and user queries.
func Init(database *sql.DB) {
	db = database
}

// Migrate creates required tables if they do not exist.
func Migrate() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	createUsers := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		email VARCHAR(191) NOT NULL UNIQUE,
		password VARCHAR(191) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'user',
		email_verified TINYINT(1) NOT NULL DEFAULT 0,
		verify_token VARCHAR(64) DEFAULT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createUsers); err != nil {
		return err
	}

	createState := `
	CREATE TABLE IF NOT EXISTS subscription_state (
		user_id INT PRIMARY KEY,
		plan_id VARCHAR(64) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'inactive',
		events_quota INT NOT NULL DEFAULT 0,
		events_used INT NOT NULL DEFAULT 0,
		course_credits_quota INT NOT NULL DEFAULT 0,
		course_credits_used INT NOT NULL DEFAULT 0,
		trial_ends_at DATETIME NULL,
		stripe_customer_id VARCHAR(64) DEFAULT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createState); err != nil {
		return err
	}

	createBadges := `
	CREATE TABLE IF NOT EXISTS course_badges (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		course_key VARCHAR(100) NOT NULL,
		badge VARCHAR(100) NOT NULL,
		points INT NOT NULL DEFAULT 0,
		awarded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_user_course (user_id, course_key),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createBadges); err != nil {
		return err
	}

	createProgress := `
	CREATE TABLE IF NOT EXISTS course_progress (
		user_id INT NOT NULL,
		course_key VARCHAR(100) NOT NULL,
		doc TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, course_key),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createProgress); err != nil {
		return err
	}

	createQuotes := `
	CREATE TABLE IF NOT EXISTS quote_requests (
		id INT AUTO_INCREMENT PRIMARY KEY,
		company VARCHAR(191) NOT NULL,
		contact_name VARCHAR(191) NOT NULL,
		email VARCHAR(191) NOT NULL,
		phone VARCHAR(50) DEFAULT NULL,
		team_size INT NOT NULL DEFAULT 0,
		requirements TEXT,
		timeline VARCHAR(191) DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createQuotes); err != nil {
		return err
	}
	return nil
}

// SeedDefaultAdmin inserts the bootstrap admin account if missing.
func SeedDefaultAdmin() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM users WHERE role = 'admin'").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		_, err := db.Exec(
			"INSERT INTO users (first_name, last_name, email, password, role, email_verified) VALUES (?,?,?,?,?,1)",
			"Admin", "inRooms", "admin@inrooms.com", "change-me-on-first-login", "admin",
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanUser(row *sql.Row) *User {
	var u User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.Role, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil
	}
	return &u
}

const userColumns = "id, first_name, last_name, email, password, role, email_verified, created_at, updated_at"

func GetUserByEmail(email string) *User {
	if db == nil {
		return nil
	}
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

func GetUserByID(id int) *User {
	if db == nil {
		return nil
	}
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func GetUserByVerifyToken(token string) *User {
	if db == nil {
		return nil
	}
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE verify_token=? LIMIT 1", token))
}

func EmailExists(email string) (bool, error) {
	if db == nil {
		return false, fmt.Errorf("db is not initialized")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM users WHERE email=?", email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func CreateUser(firstName, lastName, email, password, role string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("INSERT INTO users (first_name, last_name, email, password, role) VALUES (?,?,?,?,?)",
		firstName, lastName, email, password, role)
	return err
}

func UpdateUserPassword(id int, password string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET password=? WHERE id=?", password, id)
	return err
}

func UpdateUserProfile(id int, firstName, lastName string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET first_name=?, last_name=? WHERE id=?", firstName, lastName, id)
	return err
}

func SetVerifyToken(id int, token string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET verify_token=? WHERE id=?", token, id)
	return err
}

// SetEmailVerified marks the user verified and consumes the token.
func SetEmailVerified(id int) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET email_verified=1, verify_token=NULL WHERE id=?", id)
	return err
}
