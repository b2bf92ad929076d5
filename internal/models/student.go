package models

import "time"

// Student represents a learner enrolled in a class.
type Student struct {
	ID          string     `db:"id" json:"id"`
	ClassID     string     `db:"class_id" json:"class_id"`
	Name        string     `db:"name" json:"name"`
	Email       *string    `db:"email" json:"email,omitempty"`
	AvatarURL   *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	ParentName  *string    `db:"parent_name" json:"parent_name,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	JoinedAt    time.Time  `db:"joined_at" json:"joined_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	ClassID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
