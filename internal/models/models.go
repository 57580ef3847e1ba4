package models

import "time"

type User struct {
	ID        int64     `db:"id"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	APIKey    string    `db:"api_key"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Category struct {
	ID        int64     `db:"id"`
	Label     string    `db:"label"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Post struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	UserID     int64     `db:"user_id"`
	CategoryID int64     `db:"category_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Author is the slice of a User that is loaded alongside a comment.
type Author struct {
	ID       int64
	FullName string
	Email    string
}

type Comment struct {
	ID        int64     `db:"id"`
	Content   string    `db:"content"`
	UserID    int64     `db:"user_id"`
	PostID    int64     `db:"post_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Author is nil when the comment's user no longer exists.
	Author *Author `db:"-"`
}

// AuditEntry is one request/response pair captured by the audit logger.
type AuditEntry struct {
	ID             int64             `json:"-"`
	Timestamp      int64             `json:"timestamp"`
	Method         string            `json:"request_method"`
	Path           string            `json:"request_path"`
	FullURL        string            `json:"request_full_url"`
	ClientIP       string            `json:"request_ip"`
	Input          string            `json:"request_input"`
	Headers        map[string]string `json:"request_headers"`
	ResponseStatus int               `json:"response_code"`
	ResponseBody   string            `json:"response_body"`
}
