package app

import (
	"context"
	"time"

	"rovia/internal/domain"
)

// SubmissionService accepts new applications and suggestions from callers,
// enforcing the eligibility and duplicate-submission rules the review
// engines rely on.
type SubmissionService struct {
	store domain.Store
	cache domain.Cache
}

func NewSubmissionService(s domain.Store, cache domain.Cache) *SubmissionService {
	return &SubmissionService{store: s, cache: cache}
}

// SubmitApplication creates a Pending promoter application for userID.
// Promoters and administrators are turned away; so is anyone with an
// application still under review. A fresh submission right after a rejection
// is allowed.
func (s *SubmissionService) SubmitApplication(ctx context.Context, userID int64, d domain.ApplicationDraft) (domain.PromoterApplication, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	if u.Elevated() {
		return domain.PromoterApplication{}, domain.ErrAlreadyElevated
	}

	pending, err := s.store.HasPendingApplication(ctx, userID)
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	if pending {
		return domain.PromoterApplication{}, domain.ErrDuplicatePending
	}

	// The store enforces the one-pending-per-user invariant as well, so a
	// concurrent duplicate still surfaces as ErrDuplicatePending.
	created, err := s.store.CreateApplication(ctx, domain.PromoterApplication{
		UserID:         userID,
		CompanyName:    d.CompanyName,
		CompanyWebsite: d.CompanyWebsite,
		ContactEmail:   d.ContactEmail,
		Motivation:     d.Motivation,
		Status:         domain.StatusPending,
		SubmittedAt:    time.Now().UTC(),
		AdminNotes:     "",
	})
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	invalidateAdminDashboard(ctx, s.cache)
	invalidatePromoterDashboard(ctx, s.cache, userID)
	return created, nil
}

// SubmitSuggestion creates a Pending attraction suggestion for promoterID.
func (s *SubmissionService) SubmitSuggestion(ctx context.Context, promoterID int64, d domain.SuggestionDraft) (domain.AttractionSuggestion, error) {
	u, err := s.store.GetUser(ctx, promoterID)
	if err != nil {
		return domain.AttractionSuggestion{}, err
	}
	if u.RoleName != domain.RolePromoter {
		return domain.AttractionSuggestion{}, domain.ErrNotAPromoter
	}

	if !d.CreatesNewAttraction && d.AttractionID == nil {
		return domain.AttractionSuggestion{}, domain.ErrMissingTarget
	}
	if d.CreatesNewAttraction &&
		(d.ProposedLatitude == nil || d.ProposedLongitude == nil || d.ProposedType == nil) {
		return domain.AttractionSuggestion{}, domain.ErrMissingNewAttractionFields
	}
	if !d.CreatesNewAttraction {
		ok, err := s.store.AttractionExists(ctx, *d.AttractionID)
		if err != nil {
			return domain.AttractionSuggestion{}, err
		}
		if !ok {
			return domain.AttractionSuggestion{}, domain.ErrTargetNotFound
		}
	}

	created, err := s.store.CreateSuggestion(ctx, domain.AttractionSuggestion{
		PromoterID:           promoterID,
		AttractionID:         d.AttractionID,
		CreatesNewAttraction: d.CreatesNewAttraction,
		Title:                d.Title,
		Details:              d.Details,
		ProposedName:         d.ProposedName,
		ProposedDescription:  d.ProposedDescription,
		ProposedRegion:       d.ProposedRegion,
		ProposedType:         d.ProposedType,
		ProposedLatitude:     d.ProposedLatitude,
		ProposedLongitude:    d.ProposedLongitude,
		ProposedImageURL:     d.ProposedImageURL,
		Status:               domain.StatusPending,
		SubmittedAt:          time.Now().UTC(),
		AdminResponse:        "",
	})
	if err != nil {
		return domain.AttractionSuggestion{}, err
	}
	invalidateAdminDashboard(ctx, s.cache)
	invalidatePromoterDashboard(ctx, s.cache, promoterID)
	return created, nil
}
