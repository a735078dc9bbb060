package domain

import "fmt"

// Status is the review state shared by applications and suggestions.
// Wire values match the persisted columns; keep them stable.
type Status int

const (
	StatusPending  Status = 0
	StatusApproved Status = 1
	StatusRejected Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool { return s == StatusApproved || s == StatusRejected }

func ParseStatus(v string) (Status, error) {
	switch v {
	case "pending", "0":
		return StatusPending, nil
	case "approved", "1":
		return StatusApproved, nil
	case "rejected", "2":
		return StatusRejected, nil
	}
	return 0, fmt.Errorf("unknown status %q", v)
}
