package domain

import (
	"context"
	"time"
)

// Store is the durable record store. Implementations must make each
// Finalize* call a single atomic unit: the status transition and its side
// effects commit together or not at all, and of two concurrent finalizations
// of the same Pending record exactly one may succeed.
type Store interface {
	// Users & roles
	GetUser(ctx context.Context, id int64) (User, error)
	RoleIDByName(ctx context.Context, name string) (int64, error)

	// Applications
	CreateApplication(ctx context.Context, a PromoterApplication) (PromoterApplication, error)
	GetApplication(ctx context.Context, id int64) (PromoterApplication, error)
	HasPendingApplication(ctx context.Context, userID int64) (bool, error)
	ListApplications(ctx context.Context, q ApplicationsQuery) ([]PromoterApplication, error)
	FinalizeApplication(ctx context.Context, f ApplicationFinalize) (PromoterApplication, error)
	CountApplications(ctx context.Context, status Status) (int, error)

	// Suggestions
	CreateSuggestion(ctx context.Context, s AttractionSuggestion) (AttractionSuggestion, error)
	GetSuggestion(ctx context.Context, id int64) (AttractionSuggestion, error)
	ListSuggestions(ctx context.Context, q SuggestionsQuery) ([]SuggestionView, error)
	FinalizeSuggestion(ctx context.Context, f SuggestionFinalize) (SuggestionView, error)
	CountSuggestions(ctx context.Context, f SuggestionCountFilter) (int, error)

	// Attractions
	GetAttraction(ctx context.Context, id int64) (Attraction, error)
	AttractionExists(ctx context.Context, id int64) (bool, error)
	ListOwnedAttractions(ctx context.Context, promoterID int64) ([]OwnedAttraction, error)
}

// Cache is a read-side cache; a missing entry is not an error.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ApplicationFinalize is the atomic decision command for an application.
// PromoterRoleID is consulted only when Status is StatusApproved.
type ApplicationFinalize struct {
	ApplicationID  int64
	AdminUserID    int64
	Status         Status
	Notes          string
	PromoterRoleID int64
}

// SuggestionFinalize is the atomic decision command for a suggestion.
// Exactly one of Create/Update is set when approving; both are nil when
// rejecting.
type SuggestionFinalize struct {
	SuggestionID int64
	AdminUserID  int64
	Status       Status
	Notes        string
	PromoterID   int64
	Create       *NewAttractionProposal
	Update       *AttractionUpdate
}

// Read models & queries

type ApplicationsQuery struct {
	UserID *int64
	Status *Status
	Limit  int
}

type SuggestionsQuery struct {
	PromoterID *int64
	Status     *Status
	Limit      int
}

type SuggestionCountFilter struct {
	PromoterID    *int64
	Status        *Status
	ReviewedSince *time.Time
}

// SuggestionView is a suggestion with its resolved attraction and submitter.
type SuggestionView struct {
	Suggestion   AttractionSuggestion
	PromoterName string
	Attraction   *Attraction
}

type OwnedAttraction struct {
	ID         int64
	Name       string
	Region     string
	IsApproved bool
}

type AdminDashboard struct {
	PendingApplications  int
	ApprovedApplications int
	RejectedApplications int
	PendingSuggestions   int
	ApprovedSuggestions  int
	RejectedSuggestions  int
	ApprovedThisWeek     int
}

type PromoterDashboard struct {
	LatestApplication   *PromoterApplication
	PendingSuggestions  int
	ApprovedSuggestions int
}
