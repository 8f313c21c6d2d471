package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UsageRow is one line of the admin usage report.
type UsageRow struct {
	UserName      string
	UserEmail     string
	DocumentCount int
	ExportCount   int
	LastUploadAt  time.Time
}
