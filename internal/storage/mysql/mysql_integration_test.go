//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"rovia/internal/domain"
	mysqlrepo "rovia/internal/storage/mysql"
)

// ---------- small helpers ----------
func pint64(i int64) *int64     { return &i }
func pfloat(f float64) *float64 { return &f }
func ptype(t domain.AttractionType) *domain.AttractionType {
	return &t
}

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=rovia",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "rovia")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func insertUser(t *testing.T, db *sql.DB, username string, roleID int64) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO users (username, email, role_id) VALUES (?, ?, ?)`,
		username, username+"@rovia.example", roleID,
	)
	if err != nil {
		t.Fatalf("insert user %s: %v", username, err)
	}
	id, _ := res.LastInsertId()
	return id
}

// ---------- the tests ----------
func TestRepo_MySQL_ApplicationLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	visitorRole, err := repo.EnsureRole(ctx, domain.RoleVisitor)
	if err != nil {
		t.Fatalf("EnsureRole: %v", err)
	}
	promoterRole, err := repo.EnsureRole(ctx, domain.RolePromoter)
	if err != nil {
		t.Fatalf("EnsureRole: %v", err)
	}
	adminRole, err := repo.EnsureRole(ctx, domain.RoleAdministrator)
	if err != nil {
		t.Fatalf("EnsureRole: %v", err)
	}

	adminID := insertUser(t, db, "admin", adminRole)
	userID := insertUser(t, db, "vlad", visitorRole)

	a, err := repo.CreateApplication(ctx, domain.PromoterApplication{
		UserID:       userID,
		CompanyName:  "Carpathia Tours SRL",
		ContactEmail: "office@carpathia.example",
		Motivation:   "guided tours",
		Status:       domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	// the generated-column unique index turns a second pending insert into
	// ErrDuplicatePending
	_, err = repo.CreateApplication(ctx, domain.PromoterApplication{
		UserID:       userID,
		CompanyName:  "Second Try SRL",
		ContactEmail: "x@example.com",
		Motivation:   "again",
		Status:       domain.StatusPending,
	})
	if !errors.Is(err, domain.ErrDuplicatePending) {
		t.Fatalf("duplicate pending: got %v, want ErrDuplicatePending", err)
	}

	pending, err := repo.HasPendingApplication(ctx, userID)
	if err != nil || !pending {
		t.Fatalf("HasPendingApplication: %v %v", pending, err)
	}

	out, err := repo.FinalizeApplication(ctx, domain.ApplicationFinalize{
		ApplicationID:  a.ID,
		AdminUserID:    adminID,
		Status:         domain.StatusApproved,
		Notes:          "welcome",
		PromoterRoleID: promoterRole,
	})
	if err != nil {
		t.Fatalf("FinalizeApplication: %v", err)
	}
	if out.Status != domain.StatusApproved || out.ReviewedAt == nil || out.ReviewedByUserID == nil {
		t.Fatalf("unexpected finalized application: %+v", out)
	}

	u, err := repo.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.RoleName != domain.RolePromoter {
		t.Fatalf("user role = %s, want %s", u.RoleName, domain.RolePromoter)
	}

	// terminal records never transition again
	_, err = repo.FinalizeApplication(ctx, domain.ApplicationFinalize{
		ApplicationID: a.ID, AdminUserID: adminID, Status: domain.StatusRejected,
	})
	if !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("second finalize: got %v, want ErrAlreadyProcessed", err)
	}

	n, err := repo.CountApplications(ctx, domain.StatusApproved)
	if err != nil || n != 1 {
		t.Fatalf("CountApplications(approved) = %d, %v", n, err)
	}
}

func TestRepo_MySQL_FinalizeApplication_Concurrent(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	visitorRole, _ := repo.EnsureRole(ctx, domain.RoleVisitor)
	promoterRole, _ := repo.EnsureRole(ctx, domain.RolePromoter)
	adminRole, _ := repo.EnsureRole(ctx, domain.RoleAdministrator)
	adminID := insertUser(t, db, "admin", adminRole)
	userID := insertUser(t, db, "racer", visitorRole)

	a, err := repo.CreateApplication(ctx, domain.PromoterApplication{
		UserID: userID, CompanyName: "Race SRL", ContactEmail: "r@example.com",
		Motivation: "race", Status: domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.FinalizeApplication(ctx, domain.ApplicationFinalize{
				ApplicationID:  a.ID,
				AdminUserID:    adminID,
				Status:         domain.StatusApproved,
				Notes:          "race",
				PromoterRoleID: promoterRole,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrAlreadyProcessed):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
}

func TestRepo_MySQL_SuggestionCreateAndUpdate(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	promoterRole, _ := repo.EnsureRole(ctx, domain.RolePromoter)
	adminRole, _ := repo.EnsureRole(ctx, domain.RoleAdministrator)
	adminID := insertUser(t, db, "admin", adminRole)
	promoterID := insertUser(t, db, "ana", promoterRole)

	// approve a create suggestion: the attraction and the transition commit
	// together
	sg, err := repo.CreateSuggestion(ctx, domain.AttractionSuggestion{
		PromoterID:           promoterID,
		CreatesNewAttraction: true,
		Title:                "Add Salina Turda",
		Details:              "missing from the map",
		ProposedName:         "Salina Turda",
		ProposedDescription:  "Mină de sare.",
		ProposedRegion:       "Cluj",
		ProposedType:         ptype(domain.TypeEntertainment),
		ProposedLatitude:     pfloat(46.5875),
		ProposedLongitude:    pfloat(23.7752),
		Status:               domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}

	p, err := sg.NewAttraction()
	if err != nil {
		t.Fatalf("NewAttraction: %v", err)
	}
	view, err := repo.FinalizeSuggestion(ctx, domain.SuggestionFinalize{
		SuggestionID: sg.ID,
		AdminUserID:  adminID,
		Status:       domain.StatusApproved,
		Notes:        "good",
		PromoterID:   promoterID,
		Create:       &p,
	})
	if err != nil {
		t.Fatalf("FinalizeSuggestion(create): %v", err)
	}
	if view.Suggestion.AttractionID == nil {
		t.Fatal("approved create suggestion must link the new attraction")
	}
	created, err := repo.GetAttraction(ctx, *view.Suggestion.AttractionID)
	if err != nil {
		t.Fatalf("GetAttraction: %v", err)
	}
	if created.Rating != domain.NewAttractionRating || !created.IsApproved {
		t.Fatalf("unexpected new attraction: %+v", created)
	}
	if created.CreatedByUserID == nil || *created.CreatedByUserID != promoterID {
		t.Fatalf("owner = %v, want %d", created.CreatedByUserID, promoterID)
	}

	// approve an update suggestion: unset proposed fields keep their values
	sg2, err := repo.CreateSuggestion(ctx, domain.AttractionSuggestion{
		PromoterID:          promoterID,
		AttractionID:        pint64(created.ID),
		Title:               "Fix region",
		ProposedName:        created.Name,
		ProposedDescription: created.Description,
		ProposedRegion:      "Turda",
		ProposedImageURL:    created.ImageURL,
		Status:              domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateSuggestion(update): %v", err)
	}
	upd, err := sg2.Update()
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := repo.FinalizeSuggestion(ctx, domain.SuggestionFinalize{
		SuggestionID: sg2.ID,
		AdminUserID:  adminID,
		Status:       domain.StatusApproved,
		PromoterID:   promoterID,
		Update:       &upd,
	}); err != nil {
		t.Fatalf("FinalizeSuggestion(update): %v", err)
	}

	after, err := repo.GetAttraction(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetAttraction after update: %v", err)
	}
	if after.Region != "Turda" {
		t.Fatalf("region = %s, want Turda", after.Region)
	}
	if after.Type != created.Type || after.Latitude != created.Latitude || after.Longitude != created.Longitude {
		t.Fatalf("unproposed fields changed: %+v", after)
	}

	// a vanished target aborts the transaction and the suggestion stays
	// pending
	sg3, err := repo.CreateSuggestion(ctx, domain.AttractionSuggestion{
		PromoterID:          promoterID,
		AttractionID:        pint64(created.ID),
		Title:               "Too late",
		ProposedName:        "Too late",
		ProposedDescription: "-",
		Status:              domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("CreateSuggestion(stale): %v", err)
	}
	upd3, err := sg3.Update()
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	// detach every FK reference, then drop the target out from under the
	// pending decision
	if _, err := db.Exec(`UPDATE attraction_suggestions SET attraction_id = NULL WHERE attraction_id = ?`, created.ID); err != nil {
		t.Fatalf("clear links: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM attractions WHERE id = ?`, created.ID); err != nil {
		t.Fatalf("delete attraction: %v", err)
	}
	_, err = repo.FinalizeSuggestion(ctx, domain.SuggestionFinalize{
		SuggestionID: sg3.ID,
		AdminUserID:  adminID,
		Status:       domain.StatusApproved,
		PromoterID:   promoterID,
		Update:       &upd3,
	})
	if !errors.Is(err, domain.ErrTargetNotFound) {
		t.Fatalf("stale target: got %v, want ErrTargetNotFound", err)
	}
	got, err := repo.GetSuggestion(ctx, sg3.ID)
	if err != nil {
		t.Fatalf("GetSuggestion: %v", err)
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("suggestion status = %v, want pending", got.Status)
	}
}
