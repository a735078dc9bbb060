// Package memory implements domain.Store with in-process maps guarded by a
// single mutex. Finalization performs the same compare-and-swap on status as
// the MySQL repository, so the concurrency guarantees match. Used by tests
// and by local development without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"rovia/internal/domain"
)

type Store struct {
	mu          sync.Mutex
	users       map[int64]*domain.User
	roles       map[string]int64
	apps        map[int64]*domain.PromoterApplication
	suggestions map[int64]*domain.AttractionSuggestion
	attractions map[int64]*domain.Attraction
	nextID      int64
}

func New() *Store {
	return &Store{
		users:       map[int64]*domain.User{},
		roles:       map[string]int64{},
		apps:        map[int64]*domain.PromoterApplication{},
		suggestions: map[int64]*domain.AttractionSuggestion{},
		attractions: map[int64]*domain.Attraction{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Seeding helpers (not part of domain.Store).

func (s *Store) AddRole(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.roles[name]; ok {
		return id
	}
	id := s.id()
	s.roles[name] = id
	return id
}

func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	for name, id := range s.roles {
		if id == u.RoleID {
			u.RoleName = name
		}
	}
	cp := u
	s.users[u.ID] = &cp
	return u
}

func (s *Store) AddAttraction(a domain.Attraction) domain.Attraction {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	cp := a
	s.attractions[a.ID] = &cp
	return a
}

// RemoveAttraction lets tests simulate a target vanishing between the
// submission and the decision.
func (s *Store) RemoveAttraction(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attractions, id)
}

// Users & roles

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	out := *u
	for name, rid := range s.roles {
		if rid == u.RoleID {
			out.RoleName = name
		}
	}
	return out, nil
}

func (s *Store) RoleIDByName(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.roles[name]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

// Applications

func (s *Store) CreateApplication(_ context.Context, a domain.PromoterApplication) (domain.PromoterApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.apps {
		if ex.UserID == a.UserID && ex.Status == domain.StatusPending {
			return domain.PromoterApplication{}, domain.ErrDuplicatePending
		}
	}
	a.ID = s.id()
	cp := a
	s.apps[a.ID] = &cp
	return a, nil
}

func (s *Store) GetApplication(_ context.Context, id int64) (domain.PromoterApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return domain.PromoterApplication{}, domain.ErrNotFound
	}
	return *a, nil
}

func (s *Store) HasPendingApplication(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.apps {
		if a.UserID == userID && a.Status == domain.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListApplications(_ context.Context, q domain.ApplicationsQuery) ([]domain.PromoterApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PromoterApplication
	for _, a := range s.apps {
		if q.UserID != nil && a.UserID != *q.UserID {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// FinalizeApplication performs the Pending check and the transition under
// one lock acquisition, mirroring the repository's transaction.
func (s *Store) FinalizeApplication(_ context.Context, f domain.ApplicationFinalize) (domain.PromoterApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[f.ApplicationID]
	if !ok {
		return domain.PromoterApplication{}, domain.ErrNotFound
	}
	if a.Status != domain.StatusPending {
		return domain.PromoterApplication{}, domain.ErrAlreadyProcessed
	}
	now := time.Now().UTC()
	a.Status = f.Status
	a.ReviewedAt = &now
	admin := f.AdminUserID
	a.ReviewedByUserID = &admin
	a.AdminNotes = f.Notes
	if f.Status == domain.StatusApproved {
		if u, ok := s.users[a.UserID]; ok {
			u.RoleID = f.PromoterRoleID
		}
	}
	return *a, nil
}

func (s *Store) CountApplications(_ context.Context, status domain.Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.apps {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

// Suggestions

func (s *Store) CreateSuggestion(_ context.Context, sg domain.AttractionSuggestion) (domain.AttractionSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg.ID = s.id()
	cp := sg
	s.suggestions[sg.ID] = &cp
	return sg, nil
}

func (s *Store) GetSuggestion(_ context.Context, id int64) (domain.AttractionSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg, ok := s.suggestions[id]
	if !ok {
		return domain.AttractionSuggestion{}, domain.ErrNotFound
	}
	return *sg, nil
}

func (s *Store) ListSuggestions(_ context.Context, q domain.SuggestionsQuery) ([]domain.SuggestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SuggestionView
	for _, sg := range s.suggestions {
		if q.PromoterID != nil && sg.PromoterID != *q.PromoterID {
			continue
		}
		if q.Status != nil && sg.Status != *q.Status {
			continue
		}
		out = append(out, s.viewLocked(*sg))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Suggestion, out[j].Suggestion
		if a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.ID > b.ID
		}
		return a.SubmittedAt.After(b.SubmittedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) viewLocked(sg domain.AttractionSuggestion) domain.SuggestionView {
	v := domain.SuggestionView{Suggestion: sg}
	if u, ok := s.users[sg.PromoterID]; ok {
		v.PromoterName = u.Username
	}
	if sg.AttractionID != nil {
		if a, ok := s.attractions[*sg.AttractionID]; ok {
			cp := *a
			v.Attraction = &cp
		}
	}
	return v
}

// FinalizeSuggestion applies the transition and the attraction side effect
// atomically; a vanished update target leaves the suggestion Pending.
func (s *Store) FinalizeSuggestion(_ context.Context, f domain.SuggestionFinalize) (domain.SuggestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg, ok := s.suggestions[f.SuggestionID]
	if !ok {
		return domain.SuggestionView{}, domain.ErrNotFound
	}
	if sg.Status != domain.StatusPending {
		return domain.SuggestionView{}, domain.ErrAlreadyProcessed
	}

	now := time.Now().UTC()
	switch {
	case f.Create != nil:
		owner := f.PromoterID
		a := &domain.Attraction{
			ID:              s.id(),
			Name:            f.Create.Name,
			Description:     f.Create.Description,
			Latitude:        f.Create.Latitude,
			Longitude:       f.Create.Longitude,
			Type:            f.Create.Type,
			Region:          f.Create.Region,
			ImageURL:        f.Create.ImageURL,
			Rating:          domain.NewAttractionRating,
			CreatedByUserID: &owner,
			IsApproved:      true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		s.attractions[a.ID] = a
		sg.AttractionID = &a.ID
	case f.Update != nil:
		a, ok := s.attractions[f.Update.AttractionID]
		if !ok {
			return domain.SuggestionView{}, domain.ErrTargetNotFound
		}
		a.Name = f.Update.Name
		a.Description = f.Update.Description
		a.Region = f.Update.Region
		a.ImageURL = f.Update.ImageURL
		a.IsApproved = true
		a.UpdatedAt = now
		if f.Update.Type != nil {
			a.Type = *f.Update.Type
		}
		if f.Update.Latitude != nil {
			a.Latitude = *f.Update.Latitude
		}
		if f.Update.Longitude != nil {
			a.Longitude = *f.Update.Longitude
		}
	}

	sg.Status = f.Status
	sg.ReviewedAt = &now
	admin := f.AdminUserID
	sg.ReviewedByUserID = &admin
	sg.AdminResponse = f.Notes
	return s.viewLocked(*sg), nil
}

func (s *Store) CountSuggestions(_ context.Context, f domain.SuggestionCountFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sg := range s.suggestions {
		if f.PromoterID != nil && sg.PromoterID != *f.PromoterID {
			continue
		}
		if f.Status != nil && sg.Status != *f.Status {
			continue
		}
		if f.ReviewedSince != nil && (sg.ReviewedAt == nil || sg.ReviewedAt.Before(*f.ReviewedSince)) {
			continue
		}
		n++
	}
	return n, nil
}

// Attractions

func (s *Store) GetAttraction(_ context.Context, id int64) (domain.Attraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attractions[id]
	if !ok {
		return domain.Attraction{}, domain.ErrNotFound
	}
	return *a, nil
}

func (s *Store) AttractionExists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.attractions[id]
	return ok, nil
}

func (s *Store) ListOwnedAttractions(_ context.Context, promoterID int64) ([]domain.OwnedAttraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.OwnedAttraction
	for _, a := range s.attractions {
		if a.CreatedByUserID == nil || *a.CreatedByUserID != promoterID {
			continue
		}
		out = append(out, domain.OwnedAttraction{ID: a.ID, Name: a.Name, Region: a.Region, IsApproved: a.IsApproved})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
