package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rovia/internal/domain"
)

func TestAdminDashboardCounts(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	visitorRole, err := e.store.RoleIDByName(ctx, domain.RoleVisitor)
	require.NoError(t, err)
	u2 := e.store.AddUser(domain.User{Username: "mihai", Email: "mihai@rovia.example", RoleID: visitorRole})
	u3 := e.store.AddUser(domain.User{Username: "ioana", Email: "ioana@rovia.example", RoleID: visitorRole})

	// one pending, one approved, one rejected application
	_, err = e.sub.SubmitApplication(ctx, e.visitor.ID, draft())
	require.NoError(t, err)
	a2, err := e.sub.SubmitApplication(ctx, u2.ID, draft())
	require.NoError(t, err)
	_, err = e.rev.DecideApplication(ctx, a2.ID, e.admin.ID, true, "")
	require.NoError(t, err)
	a3, err := e.sub.SubmitApplication(ctx, u3.ID, draft())
	require.NoError(t, err)
	_, err = e.rev.DecideApplication(ctx, a3.ID, e.admin.ID, false, "")
	require.NoError(t, err)

	// one pending, one approved, one rejected suggestion
	_ = e.pendingCreateSuggestion(t)
	s2 := e.pendingUpdateSuggestion(t)
	_, err = e.rev.DecideSuggestion(ctx, s2.ID, e.admin.ID, true, "")
	require.NoError(t, err)
	s3 := e.pendingUpdateSuggestion(t)
	_, err = e.rev.DecideSuggestion(ctx, s3.ID, e.admin.ID, false, "")
	require.NoError(t, err)

	d, err := e.q.AdminDashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.AdminDashboard{
		PendingApplications:  1,
		ApprovedApplications: 1,
		RejectedApplications: 1,
		PendingSuggestions:   1,
		ApprovedSuggestions:  1,
		RejectedSuggestions:  1,
		ApprovedThisWeek:     1,
	}, d)
}

func TestAdminDashboard_WeeklyWindowExcludesOldApprovals(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -8)
	_, err := e.store.CreateSuggestion(ctx, domain.AttractionSuggestion{
		PromoterID:           e.promoter.ID,
		CreatesNewAttraction: true,
		ProposedName:         "Vechi",
		Status:               domain.StatusApproved,
		SubmittedAt:          old.AddDate(0, 0, -1),
		ReviewedAt:           &old,
	})
	require.NoError(t, err)

	sg := e.pendingUpdateSuggestion(t)
	_, err = e.rev.DecideSuggestion(ctx, sg.ID, e.admin.ID, true, "")
	require.NoError(t, err)

	d, err := e.q.AdminDashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, d.ApprovedSuggestions)
	require.Equal(t, 1, d.ApprovedThisWeek)
}

func TestAdminDashboard_CacheHitSurvivesDirectWrites(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	first, err := e.q.AdminDashboard(ctx)
	require.NoError(t, err)
	require.Contains(t, e.cache.store, "dash:admin")

	// A write that bypasses the services does not invalidate the cache, so
	// the next read still serves the cached aggregate.
	_, err = e.store.CreateSuggestion(ctx, domain.AttractionSuggestion{
		PromoterID: e.promoter.ID,
		Status:     domain.StatusPending,
	})
	require.NoError(t, err)

	second, err := e.q.AdminDashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// A submission through the gateway drops the key; the rebuild sees both.
	_, err = e.sub.SubmitApplication(ctx, e.visitor.ID, draft())
	require.NoError(t, err)

	third, err := e.q.AdminDashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, third.PendingApplications)
	require.Equal(t, 1, third.PendingSuggestions)
}

func TestPromoterDashboard(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	sg := e.pendingCreateSuggestion(t)
	_, err := e.rev.DecideSuggestion(ctx, sg.ID, e.admin.ID, true, "")
	require.NoError(t, err)
	_ = e.pendingUpdateSuggestion(t)

	d, err := e.q.PromoterDashboard(ctx, e.promoter.ID)
	require.NoError(t, err)
	require.Nil(t, d.LatestApplication)
	require.Equal(t, 1, d.PendingSuggestions)
	require.Equal(t, 1, d.ApprovedSuggestions)
}

func TestPromoterDashboard_LatestApplication(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	a, err := e.sub.SubmitApplication(ctx, e.visitor.ID, draft())
	require.NoError(t, err)

	d, err := e.q.PromoterDashboard(ctx, e.visitor.ID)
	require.NoError(t, err)
	require.NotNil(t, d.LatestApplication)
	require.Equal(t, a.ID, d.LatestApplication.ID)
	require.Equal(t, domain.StatusPending, d.LatestApplication.Status)
}

func TestLatestApplication_NoneIsNil(t *testing.T) {
	e := newEnv()
	latest, err := e.q.LatestApplication(context.Background(), e.visitor.ID)
	require.NoError(t, err)
	require.Nil(t, latest)
}

func TestSuggestionsForPromoter_NewestFirstAndFiltered(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_ = e.pendingUpdateSuggestion(t)
	s2 := e.pendingUpdateSuggestion(t)
	s3 := e.pendingCreateSuggestion(t)
	_, err := e.rev.DecideSuggestion(ctx, s2.ID, e.admin.ID, false, "")
	require.NoError(t, err)

	all, err := e.q.SuggestionsForPromoter(ctx, e.promoter.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, s3.ID, all[0].Suggestion.ID)
	require.Equal(t, "ana", all[0].PromoterName)

	pending := domain.StatusPending
	got, err := e.q.SuggestionsForPromoter(ctx, e.promoter.ID, &pending)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, v := range got {
		require.Equal(t, domain.StatusPending, v.Suggestion.Status)
	}
}

func TestSuggestionView_ResolvesTarget(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_ = e.pendingUpdateSuggestion(t)
	views, err := e.q.Suggestions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Attraction)
	require.Equal(t, e.attraction.Name, views[0].Attraction.Name)
}

func TestOwnedAttractions(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	sg := e.pendingCreateSuggestion(t)
	_, err := e.rev.DecideSuggestion(ctx, sg.ID, e.admin.ID, true, "")
	require.NoError(t, err)

	owned, err := e.q.OwnedAttractions(ctx, e.promoter.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	require.Equal(t, "Salina Turda", owned[0].Name)
	require.True(t, owned[0].IsApproved)
}
