package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"

	"rovia/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

const mysqlErrDuplicateEntry = 1062

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valType(p *domain.AttractionType) any {
	if p == nil {
		return nil
	}
	return int(*p)
}

// Users & roles

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, getUserSQL, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.RoleID, &u.RoleName, &u.TotalPoints, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *Repo) RoleIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, roleIDByNameSQL, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, domain.ErrNotFound
	}
	return id, err
}

// Applications

func (r *Repo) CreateApplication(ctx context.Context, a domain.PromoterApplication) (domain.PromoterApplication, error) {
	res, err := r.db.ExecContext(ctx, insertApplicationSQL,
		a.UserID, a.CompanyName, a.CompanyWebsite, a.ContactEmail, a.Motivation,
		int(a.Status), a.SubmittedAt, a.AdminNotes,
	)
	if err != nil {
		// The generated-column unique index on (pending user) turns a racing
		// duplicate submit into a constraint violation.
		var me *mysqldrv.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
			return domain.PromoterApplication{}, domain.ErrDuplicatePending
		}
		return domain.PromoterApplication{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	return r.GetApplication(ctx, id)
}

func (r *Repo) GetApplication(ctx context.Context, id int64) (domain.PromoterApplication, error) {
	return scanApplication(r.db.QueryRowContext(ctx, getApplicationSQL, id))
}

type rowScanner interface{ Scan(dest ...any) error }

func scanApplication(row rowScanner) (domain.PromoterApplication, error) {
	var a domain.PromoterApplication
	var status int
	var reviewedAt sql.NullTime
	var reviewedBy sql.NullInt64
	err := row.Scan(
		&a.ID, &a.UserID, &a.CompanyName, &a.CompanyWebsite, &a.ContactEmail, &a.Motivation,
		&status, &a.SubmittedAt, &reviewedAt, &reviewedBy, &a.AdminNotes,
	)
	if err == sql.ErrNoRows {
		return domain.PromoterApplication{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	a.Status = domain.Status(status)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}
	if reviewedBy.Valid {
		v := reviewedBy.Int64
		a.ReviewedByUserID = &v
	}
	return a, nil
}

func (r *Repo) HasPendingApplication(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, hasPendingApplicationSQL, userID).Scan(&ok)
	return ok, err
}

func (r *Repo) ListApplications(ctx context.Context, q domain.ApplicationsQuery) ([]domain.PromoterApplication, error) {
	sqlStr := `SELECT` + applicationColumns + `FROM promoter_applications WHERE 1=1`
	var args []any
	if q.UserID != nil {
		sqlStr += ` AND user_id = ?`
		args = append(args, *q.UserID)
	}
	if q.Status != nil {
		sqlStr += ` AND status = ?`
		args = append(args, int(*q.Status))
	}
	sqlStr += ` ORDER BY submitted_at DESC, id DESC`
	if q.Limit > 0 {
		sqlStr += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PromoterApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FinalizeApplication commits the Pending -> terminal transition and, on
// approval, the role promotion in one transaction. The conditional UPDATE is
// what makes concurrent decisions on the same record safe.
func (r *Repo) FinalizeApplication(ctx context.Context, f domain.ApplicationFinalize) (domain.PromoterApplication, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, finalizeApplicationSQL,
		int(f.Status), f.AdminUserID, f.Notes, f.ApplicationID)
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.PromoterApplication{}, err
	}
	if n == 0 {
		var st int
		err := tx.QueryRowContext(ctx, `SELECT status FROM promoter_applications WHERE id = ?`, f.ApplicationID).Scan(&st)
		if err == sql.ErrNoRows {
			return domain.PromoterApplication{}, domain.ErrNotFound
		}
		if err != nil {
			return domain.PromoterApplication{}, err
		}
		return domain.PromoterApplication{}, domain.ErrAlreadyProcessed
	}

	if f.Status == domain.StatusApproved {
		if _, err := tx.ExecContext(ctx, promoteApplicantSQL, f.PromoterRoleID, f.ApplicationID); err != nil {
			return domain.PromoterApplication{}, fmt.Errorf("promote applicant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.PromoterApplication{}, err
	}
	return r.GetApplication(ctx, f.ApplicationID)
}

func (r *Repo) CountApplications(ctx context.Context, status domain.Status) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countApplicationsSQL, int(status)).Scan(&n)
	return n, err
}

// Suggestions

func (r *Repo) CreateSuggestion(ctx context.Context, s domain.AttractionSuggestion) (domain.AttractionSuggestion, error) {
	res, err := r.db.ExecContext(ctx, insertSuggestionSQL,
		s.PromoterID, valInt64(s.AttractionID), s.CreatesNewAttraction, s.Title, s.Details,
		s.ProposedName, s.ProposedDescription, s.ProposedRegion, valType(s.ProposedType),
		valF64(s.ProposedLatitude), valF64(s.ProposedLongitude), s.ProposedImageURL,
		int(s.Status), s.SubmittedAt, s.AdminResponse,
	)
	if err != nil {
		return domain.AttractionSuggestion{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.AttractionSuggestion{}, err
	}
	return r.GetSuggestion(ctx, id)
}

func scanSuggestion(row rowScanner) (domain.AttractionSuggestion, error) {
	var s domain.AttractionSuggestion
	var attractionID, reviewedBy sql.NullInt64
	var propType sql.NullInt64
	var propLat, propLon sql.NullFloat64
	var status int
	var reviewedAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.PromoterID, &attractionID, &s.CreatesNewAttraction, &s.Title, &s.Details,
		&s.ProposedName, &s.ProposedDescription, &s.ProposedRegion, &propType,
		&propLat, &propLon, &s.ProposedImageURL,
		&status, &s.SubmittedAt, &reviewedAt, &reviewedBy, &s.AdminResponse,
	)
	if err == sql.ErrNoRows {
		return domain.AttractionSuggestion{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.AttractionSuggestion{}, err
	}
	s.Status = domain.Status(status)
	if attractionID.Valid {
		v := attractionID.Int64
		s.AttractionID = &v
	}
	if propType.Valid {
		t := domain.AttractionType(propType.Int64)
		s.ProposedType = &t
	}
	if propLat.Valid {
		v := propLat.Float64
		s.ProposedLatitude = &v
	}
	if propLon.Valid {
		v := propLon.Float64
		s.ProposedLongitude = &v
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		s.ReviewedAt = &t
	}
	if reviewedBy.Valid {
		v := reviewedBy.Int64
		s.ReviewedByUserID = &v
	}
	return s, nil
}

func (r *Repo) GetSuggestion(ctx context.Context, id int64) (domain.AttractionSuggestion, error) {
	return scanSuggestion(r.db.QueryRowContext(ctx, getSuggestionSQL, id))
}

const suggestionViewSelect = `
SELECT` + suggestionColumns + `,
  u.username,
  a.id, a.name, a.description, a.latitude, a.longitude, a.type, a.region,
  a.image_url, a.rating, a.created_by_user_id, a.is_approved, a.created_at, a.updated_at
FROM attraction_suggestions s
JOIN users u ON u.id = s.promoter_id
LEFT JOIN attractions a ON a.id = s.attraction_id
`

func scanSuggestionView(row rowScanner) (domain.SuggestionView, error) {
	var v domain.SuggestionView
	s := &v.Suggestion
	var attractionID, reviewedBy sql.NullInt64
	var propType sql.NullInt64
	var propLat, propLon sql.NullFloat64
	var status int
	var reviewedAt sql.NullTime

	var aID sql.NullInt64
	var aName, aDesc, aRegion, aImage sql.NullString
	var aLat, aLon, aRating sql.NullFloat64
	var aType, aCreatedBy sql.NullInt64
	var aApproved sql.NullBool
	var aCreatedAt, aUpdatedAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.PromoterID, &attractionID, &s.CreatesNewAttraction, &s.Title, &s.Details,
		&s.ProposedName, &s.ProposedDescription, &s.ProposedRegion, &propType,
		&propLat, &propLon, &s.ProposedImageURL,
		&status, &s.SubmittedAt, &reviewedAt, &reviewedBy, &s.AdminResponse,
		&v.PromoterName,
		&aID, &aName, &aDesc, &aLat, &aLon, &aType, &aRegion,
		&aImage, &aRating, &aCreatedBy, &aApproved, &aCreatedAt, &aUpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.SuggestionView{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.SuggestionView{}, err
	}

	s.Status = domain.Status(status)
	if attractionID.Valid {
		id := attractionID.Int64
		s.AttractionID = &id
	}
	if propType.Valid {
		t := domain.AttractionType(propType.Int64)
		s.ProposedType = &t
	}
	if propLat.Valid {
		f := propLat.Float64
		s.ProposedLatitude = &f
	}
	if propLon.Valid {
		f := propLon.Float64
		s.ProposedLongitude = &f
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		s.ReviewedAt = &t
	}
	if reviewedBy.Valid {
		id := reviewedBy.Int64
		s.ReviewedByUserID = &id
	}

	if aID.Valid {
		a := domain.Attraction{
			ID:          aID.Int64,
			Name:        aName.String,
			Description: aDesc.String,
			Latitude:    aLat.Float64,
			Longitude:   aLon.Float64,
			Type:        domain.AttractionType(aType.Int64),
			Region:      aRegion.String,
			ImageURL:    aImage.String,
			Rating:      aRating.Float64,
			IsApproved:  aApproved.Bool,
			CreatedAt:   aCreatedAt.Time,
			UpdatedAt:   aUpdatedAt.Time,
		}
		if aCreatedBy.Valid {
			id := aCreatedBy.Int64
			a.CreatedByUserID = &id
		}
		v.Attraction = &a
	}
	return v, nil
}

func (r *Repo) ListSuggestions(ctx context.Context, q domain.SuggestionsQuery) ([]domain.SuggestionView, error) {
	sqlStr := suggestionViewSelect + `WHERE 1=1`
	var args []any
	if q.PromoterID != nil {
		sqlStr += ` AND s.promoter_id = ?`
		args = append(args, *q.PromoterID)
	}
	if q.Status != nil {
		sqlStr += ` AND s.status = ?`
		args = append(args, int(*q.Status))
	}
	sqlStr += ` ORDER BY s.submitted_at DESC, s.id DESC`
	if q.Limit > 0 {
		sqlStr += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SuggestionView
	for rows.Next() {
		v, err := scanSuggestionView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) suggestionView(ctx context.Context, id int64) (domain.SuggestionView, error) {
	return scanSuggestionView(r.db.QueryRowContext(ctx, suggestionViewSelect+`WHERE s.id = ?`, id))
}

// FinalizeSuggestion commits the status transition together with the
// attraction side effect. If the update target vanished, the whole
// transaction rolls back and the suggestion stays Pending.
func (r *Repo) FinalizeSuggestion(ctx context.Context, f domain.SuggestionFinalize) (domain.SuggestionView, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.SuggestionView{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, finalizeSuggestionSQL,
		int(f.Status), f.AdminUserID, f.Notes, f.SuggestionID)
	if err != nil {
		return domain.SuggestionView{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.SuggestionView{}, err
	}
	if n == 0 {
		var st int
		err := tx.QueryRowContext(ctx, `SELECT status FROM attraction_suggestions WHERE id = ?`, f.SuggestionID).Scan(&st)
		if err == sql.ErrNoRows {
			return domain.SuggestionView{}, domain.ErrNotFound
		}
		if err != nil {
			return domain.SuggestionView{}, err
		}
		return domain.SuggestionView{}, domain.ErrAlreadyProcessed
	}

	switch {
	case f.Create != nil:
		ins, err := tx.ExecContext(ctx, insertAttractionSQL,
			f.Create.Name, f.Create.Description, f.Create.Latitude, f.Create.Longitude,
			int(f.Create.Type), f.Create.Region, f.Create.ImageURL,
			domain.NewAttractionRating, f.PromoterID,
		)
		if err != nil {
			return domain.SuggestionView{}, fmt.Errorf("create attraction: %w", err)
		}
		newID, err := ins.LastInsertId()
		if err != nil {
			return domain.SuggestionView{}, err
		}
		if _, err := tx.ExecContext(ctx, linkSuggestionAttractionSQL, newID, f.SuggestionID); err != nil {
			return domain.SuggestionView{}, err
		}
	case f.Update != nil:
		var id int64
		err := tx.QueryRowContext(ctx, lockAttractionSQL, f.Update.AttractionID).Scan(&id)
		if err == sql.ErrNoRows {
			return domain.SuggestionView{}, domain.ErrTargetNotFound
		}
		if err != nil {
			return domain.SuggestionView{}, err
		}
		if _, err := tx.ExecContext(ctx, applyAttractionUpdateSQL,
			f.Update.Name, f.Update.Description, f.Update.Region, f.Update.ImageURL,
			valType(f.Update.Type), valF64(f.Update.Latitude), valF64(f.Update.Longitude),
			f.Update.AttractionID,
		); err != nil {
			return domain.SuggestionView{}, fmt.Errorf("apply attraction update: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.SuggestionView{}, err
	}
	return r.suggestionView(ctx, f.SuggestionID)
}

func (r *Repo) CountSuggestions(ctx context.Context, f domain.SuggestionCountFilter) (int, error) {
	sqlStr := `SELECT COUNT(*) FROM attraction_suggestions WHERE 1=1`
	var args []any
	if f.PromoterID != nil {
		sqlStr += ` AND promoter_id = ?`
		args = append(args, *f.PromoterID)
	}
	if f.Status != nil {
		sqlStr += ` AND status = ?`
		args = append(args, int(*f.Status))
	}
	if f.ReviewedSince != nil {
		sqlStr += ` AND reviewed_at >= ?`
		args = append(args, *f.ReviewedSince)
	}
	var n int
	err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n)
	return n, err
}

// Attractions

func (r *Repo) GetAttraction(ctx context.Context, id int64) (domain.Attraction, error) {
	var a domain.Attraction
	var createdBy sql.NullInt64
	var typ int
	err := r.db.QueryRowContext(ctx, getAttractionSQL, id).Scan(
		&a.ID, &a.Name, &a.Description, &a.Latitude, &a.Longitude, &typ, &a.Region,
		&a.ImageURL, &a.Rating, &createdBy, &a.IsApproved, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Attraction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Attraction{}, err
	}
	a.Type = domain.AttractionType(typ)
	if createdBy.Valid {
		v := createdBy.Int64
		a.CreatedByUserID = &v
	}
	return a, nil
}

func (r *Repo) AttractionExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, attractionExistsSQL, id).Scan(&ok)
	return ok, err
}

func (r *Repo) ListOwnedAttractions(ctx context.Context, promoterID int64) ([]domain.OwnedAttraction, error) {
	rows, err := r.db.QueryContext(ctx, listOwnedAttractionsSQL, promoterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OwnedAttraction
	for rows.Next() {
		var a domain.OwnedAttraction
		if err := rows.Scan(&a.ID, &a.Name, &a.Region, &a.IsApproved); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Seeding (cmd/seeder)

func (r *Repo) EnsureRole(ctx context.Context, name string) (int64, error) {
	if _, err := r.db.ExecContext(ctx, ensureRoleSQL, name); err != nil {
		return 0, err
	}
	return r.RoleIDByName(ctx, name)
}

func (r *Repo) EnsureUser(ctx context.Context, username, email, passwordHash string, roleID int64) error {
	_, err := r.db.ExecContext(ctx, ensureUserSQL, username, email, passwordHash, roleID)
	return err
}

func (r *Repo) SeedAttraction(ctx context.Context, a domain.Attraction) error {
	_, err := r.db.ExecContext(ctx, seedAttractionSQL,
		a.Name, a.Description, a.Latitude, a.Longitude, int(a.Type),
		a.Region, a.ImageURL, a.Rating, a.Name,
	)
	return err
}
