package models

import "time"

// Class represents a taught class together with its free-text weekly schedule.
type Class struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	Schedule  *string   `db:"schedule" json:"schedule"`
	Level     *string   `db:"level" json:"level"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Level     string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
