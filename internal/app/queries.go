package app

import (
	"context"
	"fmt"
	"time"

	"rovia/internal/domain"
)

// QueryService serves the list and dashboard surfaces. Dashboards are the
// only aggregate reads, so only they go through the cache; list endpoints
// read the store directly.
type QueryService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(s domain.Store, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

const defaultListLimit = 100

func (s *QueryService) ApplicationsForUser(ctx context.Context, userID int64) ([]domain.PromoterApplication, error) {
	return s.store.ListApplications(ctx, domain.ApplicationsQuery{UserID: &userID, Limit: defaultListLimit})
}

// LatestApplication returns the newest application of the user, or nil when
// they never applied.
func (s *QueryService) LatestApplication(ctx context.Context, userID int64) (*domain.PromoterApplication, error) {
	apps, err := s.store.ListApplications(ctx, domain.ApplicationsQuery{UserID: &userID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

func (s *QueryService) Applications(ctx context.Context, status *domain.Status) ([]domain.PromoterApplication, error) {
	return s.store.ListApplications(ctx, domain.ApplicationsQuery{Status: status, Limit: defaultListLimit})
}

func (s *QueryService) Suggestions(ctx context.Context, status *domain.Status) ([]domain.SuggestionView, error) {
	return s.store.ListSuggestions(ctx, domain.SuggestionsQuery{Status: status, Limit: defaultListLimit})
}

func (s *QueryService) SuggestionsForPromoter(ctx context.Context, promoterID int64, status *domain.Status) ([]domain.SuggestionView, error) {
	return s.store.ListSuggestions(ctx, domain.SuggestionsQuery{PromoterID: &promoterID, Status: status, Limit: defaultListLimit})
}

func (s *QueryService) OwnedAttractions(ctx context.Context, promoterID int64) ([]domain.OwnedAttraction, error) {
	return s.store.ListOwnedAttractions(ctx, promoterID)
}

// AdminDashboard aggregates workflow counters, including suggestions
// approved within the trailing 7 days.
func (s *QueryService) AdminDashboard(ctx context.Context) (domain.AdminDashboard, error) {
	var d domain.AdminDashboard
	if ok, _ := s.cache.Get(ctx, adminDashboardKey, &d); ok {
		return d, nil
	}

	var err error
	counts := []struct {
		dst *int
		st  domain.Status
	}{
		{&d.PendingApplications, domain.StatusPending},
		{&d.ApprovedApplications, domain.StatusApproved},
		{&d.RejectedApplications, domain.StatusRejected},
	}
	for _, c := range counts {
		if *c.dst, err = s.store.CountApplications(ctx, c.st); err != nil {
			return domain.AdminDashboard{}, err
		}
	}
	for _, c := range []struct {
		dst *int
		st  domain.Status
	}{
		{&d.PendingSuggestions, domain.StatusPending},
		{&d.ApprovedSuggestions, domain.StatusApproved},
		{&d.RejectedSuggestions, domain.StatusRejected},
	} {
		st := c.st
		if *c.dst, err = s.store.CountSuggestions(ctx, domain.SuggestionCountFilter{Status: &st}); err != nil {
			return domain.AdminDashboard{}, err
		}
	}
	approved := domain.StatusApproved
	since := time.Now().UTC().AddDate(0, 0, -7)
	if d.ApprovedThisWeek, err = s.store.CountSuggestions(ctx, domain.SuggestionCountFilter{Status: &approved, ReviewedSince: &since}); err != nil {
		return domain.AdminDashboard{}, err
	}

	_ = s.cache.Set(ctx, adminDashboardKey, d, int(s.cacheTTL.Seconds()))
	return d, nil
}

// PromoterDashboard summarizes a promoter's own workflow state.
func (s *QueryService) PromoterDashboard(ctx context.Context, promoterID int64) (domain.PromoterDashboard, error) {
	key := promoterDashboardKey(promoterID)
	var d domain.PromoterDashboard
	if ok, _ := s.cache.Get(ctx, key, &d); ok {
		return d, nil
	}

	latest, err := s.LatestApplication(ctx, promoterID)
	if err != nil {
		return domain.PromoterDashboard{}, err
	}
	d.LatestApplication = latest

	for _, c := range []struct {
		dst *int
		st  domain.Status
	}{
		{&d.PendingSuggestions, domain.StatusPending},
		{&d.ApprovedSuggestions, domain.StatusApproved},
	} {
		st := c.st
		if *c.dst, err = s.store.CountSuggestions(ctx, domain.SuggestionCountFilter{PromoterID: &promoterID, Status: &st}); err != nil {
			return domain.PromoterDashboard{}, err
		}
	}

	_ = s.cache.Set(ctx, key, d, int(s.cacheTTL.Seconds()))
	return d, nil
}

// cache keys & invalidation, shared by the write-side services

const adminDashboardKey = "dash:admin"

func promoterDashboardKey(promoterID int64) string {
	return fmt.Sprintf("dash:promoter:%d", promoterID)
}

func invalidateAdminDashboard(ctx context.Context, c domain.Cache) {
	if c != nil {
		_ = c.Del(ctx, adminDashboardKey)
	}
}

func invalidatePromoterDashboard(ctx context.Context, c domain.Cache, promoterID int64) {
	if c != nil {
		_ = c.Del(ctx, promoterDashboardKey(promoterID))
	}
}
