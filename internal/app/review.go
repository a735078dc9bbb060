package app

import (
	"context"
	"errors"
	"fmt"

	"rovia/internal/domain"
)

// ReviewService applies administrator decisions to pending applications and
// suggestions. It holds no state between calls; every decision re-reads the
// record and the store commits the transition atomically, so two concurrent
// decisions on the same record cannot both succeed.
type ReviewService struct {
	store domain.Store
	cache domain.Cache
}

func NewReviewService(s domain.Store, cache domain.Cache) *ReviewService {
	return &ReviewService{store: s, cache: cache}
}

// DecideApplication finalizes a promoter application. Approval promotes the
// owning user to Promoter; if that role cannot be resolved nothing is
// persisted.
func (s *ReviewService) DecideApplication(ctx context.Context, applicationID, adminUserID int64, accept bool, notes string) (domain.PromoterApplication, error) {
	a, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	if a.Status != domain.StatusPending {
		return domain.PromoterApplication{}, domain.ErrAlreadyProcessed
	}

	f := domain.ApplicationFinalize{
		ApplicationID: applicationID,
		AdminUserID:   adminUserID,
		Status:        domain.StatusRejected,
		Notes:         notes,
	}
	if accept {
		roleID, err := s.store.RoleIDByName(ctx, domain.RolePromoter)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.PromoterApplication{}, fmt.Errorf("%w: %s", domain.ErrRoleNotConfigured, domain.RolePromoter)
			}
			return domain.PromoterApplication{}, err
		}
		f.Status = domain.StatusApproved
		f.PromoterRoleID = roleID
	}

	out, err := s.store.FinalizeApplication(ctx, f)
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	invalidateAdminDashboard(ctx, s.cache)
	invalidatePromoterDashboard(ctx, s.cache, a.UserID)
	return out, nil
}

// DecideSuggestion finalizes an attraction suggestion. Approval either
// creates the proposed attraction or applies the proposed edit to the
// target, in the same atomic unit as the status transition. Rejection only
// stamps the audit fields.
func (s *ReviewService) DecideSuggestion(ctx context.Context, suggestionID, adminUserID int64, accept bool, notes string) (domain.SuggestionView, error) {
	sg, err := s.store.GetSuggestion(ctx, suggestionID)
	if err != nil {
		return domain.SuggestionView{}, err
	}
	if sg.Status != domain.StatusPending {
		return domain.SuggestionView{}, domain.ErrAlreadyProcessed
	}

	f := domain.SuggestionFinalize{
		SuggestionID: suggestionID,
		AdminUserID:  adminUserID,
		Status:       domain.StatusRejected,
		Notes:        notes,
		PromoterID:   sg.PromoterID,
	}
	if accept {
		f.Status = domain.StatusApproved
		if sg.CreatesNewAttraction {
			p, err := sg.NewAttraction()
			if err != nil {
				return domain.SuggestionView{}, err
			}
			f.Create = &p
		} else {
			u, err := sg.Update()
			if err != nil {
				return domain.SuggestionView{}, err
			}
			ok, err := s.store.AttractionExists(ctx, u.AttractionID)
			if err != nil {
				return domain.SuggestionView{}, err
			}
			if !ok {
				return domain.SuggestionView{}, domain.ErrTargetNotFound
			}
			f.Update = &u
		}
	}

	out, err := s.store.FinalizeSuggestion(ctx, f)
	if err != nil {
		return domain.SuggestionView{}, err
	}
	invalidateAdminDashboard(ctx, s.cache)
	invalidatePromoterDashboard(ctx, s.cache, sg.PromoterID)
	return out, nil
}
