package domain

import "time"

// PromoterApplication is a user's request for the Promoter role.
// At most one application per user may be Pending at any time; terminal
// records are never mutated again.
type PromoterApplication struct {
	ID               int64
	UserID           int64
	CompanyName      string
	CompanyWebsite   string
	ContactEmail     string
	Motivation       string
	Status           Status
	SubmittedAt      time.Time
	ReviewedAt       *time.Time
	ReviewedByUserID *int64
	AdminNotes       string
}

// ApplicationDraft carries the caller-supplied fields of a new application.
type ApplicationDraft struct {
	CompanyName    string
	CompanyWebsite string
	ContactEmail   string
	Motivation     string
}
