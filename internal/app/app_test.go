package app_test

import (
	"context"
	"encoding/json"

	"rovia/internal/app"
	"rovia/internal/domain"
	"rovia/internal/storage/memory"
)

// ---- shared fixture ----

// env wires the services over the in-memory store, pre-seeded with the three
// roles, an administrator, a promoter, a visitor, and one approved
// attraction owned by the promoter.
type env struct {
	store *memory.Store
	cache *fakeCache
	sub   *app.SubmissionService
	rev   *app.ReviewService
	q     *app.QueryService

	admin      domain.User
	promoter   domain.User
	visitor    domain.User
	attraction domain.Attraction
}

func newEnv() *env {
	st := memory.New()
	visitorRole := st.AddRole(domain.RoleVisitor)
	promoterRole := st.AddRole(domain.RolePromoter)
	adminRole := st.AddRole(domain.RoleAdministrator)

	e := &env{store: st, cache: &fakeCache{}}
	e.admin = st.AddUser(domain.User{Username: "admin", Email: "admin@rovia.example", RoleID: adminRole})
	e.promoter = st.AddUser(domain.User{Username: "ana", Email: "ana@rovia.example", RoleID: promoterRole})
	e.visitor = st.AddUser(domain.User{Username: "vlad", Email: "vlad@rovia.example", RoleID: visitorRole})

	owner := e.promoter.ID
	e.attraction = st.AddAttraction(domain.Attraction{
		Name:            "Cetatea Râșnov",
		Description:     "Fortificație medievală.",
		Latitude:        45.5877,
		Longitude:       25.4608,
		Type:            domain.TypeHistoric,
		Region:          "Brașov",
		ImageURL:        "https://example.com/rasnov.jpg",
		Rating:          4.3,
		CreatedByUserID: &owner,
		IsApproved:      true,
	})

	e.sub = app.NewSubmissionService(st, e.cache)
	e.rev = app.NewReviewService(st, e.cache)
	e.q = app.NewQueryService(st, e.cache, 0)
	return e
}

// newEnvWithoutPromoterRole reproduces a misconfigured deployment where the
// Promoter role was never seeded.
func newEnvWithoutPromoterRole() *env {
	st := memory.New()
	visitorRole := st.AddRole(domain.RoleVisitor)
	adminRole := st.AddRole(domain.RoleAdministrator)

	e := &env{store: st, cache: &fakeCache{}}
	e.admin = st.AddUser(domain.User{Username: "admin", Email: "admin@rovia.example", RoleID: adminRole})
	e.visitor = st.AddUser(domain.User{Username: "vlad", Email: "vlad@rovia.example", RoleID: visitorRole})

	e.sub = app.NewSubmissionService(st, e.cache)
	e.rev = app.NewReviewService(st, e.cache)
	e.q = app.NewQueryService(st, e.cache, 0)
	return e
}

func ptr[T any](v T) *T { return &v }

// ---- cache fake ----

// fakeCache round-trips values through JSON, like the real Redis adapter.
type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	delete(c.store, key)
	return nil
}
