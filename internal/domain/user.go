package domain

import "time"

// Role names as stored in the roles table.
const (
	RoleVisitor       = "Visitor"
	RolePromoter      = "Promoter"
	RoleAdministrator = "Administrator"
)

type User struct {
	ID          int64
	Username    string
	Email       string
	RoleID      int64
	RoleName    string // joined from roles on read
	TotalPoints int
	CreatedAt   time.Time
}

// Elevated reports whether the user already holds privileges beyond Visitor.
func (u User) Elevated() bool {
	return u.RoleName == RolePromoter || u.RoleName == RoleAdministrator
}
