package mysql

// Status wire values: 0 pending, 1 approved, 2 rejected.

const getUserSQL = `
SELECT
  u.id,
  u.username,
  u.email,
  u.role_id,
  r.name,
  u.total_points,
  u.created_at
FROM users u
JOIN roles r ON r.id = u.role_id
WHERE u.id = ?
`

const roleIDByNameSQL = `SELECT id FROM roles WHERE name = ?`

const insertApplicationSQL = `
INSERT INTO promoter_applications
  (user_id, company_name, company_website, contact_email, motivation, status, submitted_at, admin_notes)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const applicationColumns = `
  id, user_id, company_name, company_website, contact_email, motivation,
  status, submitted_at, reviewed_at, reviewed_by_user_id, admin_notes
`

const getApplicationSQL = `SELECT` + applicationColumns + `FROM promoter_applications WHERE id = ?`

const hasPendingApplicationSQL = `
SELECT EXISTS(SELECT 1 FROM promoter_applications WHERE user_id = ? AND status = 0)
`

// The WHERE status = 0 clause is the idempotency guard: of two concurrent
// decisions exactly one update reports an affected row.
const finalizeApplicationSQL = `
UPDATE promoter_applications
SET status = ?, reviewed_at = UTC_TIMESTAMP(), reviewed_by_user_id = ?, admin_notes = ?
WHERE id = ? AND status = 0
`

const promoteApplicantSQL = `
UPDATE users
SET role_id = ?
WHERE id = (SELECT user_id FROM promoter_applications WHERE id = ?)
`

const countApplicationsSQL = `SELECT COUNT(*) FROM promoter_applications WHERE status = ?`

const insertSuggestionSQL = `
INSERT INTO attraction_suggestions
  (promoter_id, attraction_id, creates_new_attraction, title, details,
   proposed_name, proposed_description, proposed_region, proposed_type,
   proposed_latitude, proposed_longitude, proposed_image_url,
   status, submitted_at, admin_response)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const suggestionColumns = `
  s.id, s.promoter_id, s.attraction_id, s.creates_new_attraction, s.title, s.details,
  s.proposed_name, s.proposed_description, s.proposed_region, s.proposed_type,
  s.proposed_latitude, s.proposed_longitude, s.proposed_image_url,
  s.status, s.submitted_at, s.reviewed_at, s.reviewed_by_user_id, s.admin_response
`

const getSuggestionSQL = `
SELECT` + suggestionColumns + `
FROM attraction_suggestions s
WHERE s.id = ?
`

const finalizeSuggestionSQL = `
UPDATE attraction_suggestions
SET status = ?, reviewed_at = UTC_TIMESTAMP(), reviewed_by_user_id = ?, admin_response = ?
WHERE id = ? AND status = 0
`

const linkSuggestionAttractionSQL = `
UPDATE attraction_suggestions SET attraction_id = ? WHERE id = ?
`

const insertAttractionSQL = `
INSERT INTO attractions
  (name, description, latitude, longitude, type, region, image_url, rating,
   created_by_user_id, is_approved, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, UTC_TIMESTAMP(), UTC_TIMESTAMP())
`

const lockAttractionSQL = `SELECT id FROM attractions WHERE id = ? FOR UPDATE`

// Proposed type/coordinates overwrite only when present; the other proposed
// fields always overwrite.
const applyAttractionUpdateSQL = `
UPDATE attractions
SET name = ?,
    description = ?,
    region = ?,
    image_url = ?,
    is_approved = 1,
    updated_at = UTC_TIMESTAMP(),
    type = COALESCE(?, type),
    latitude = COALESCE(?, latitude),
    longitude = COALESCE(?, longitude)
WHERE id = ?
`

const attractionColumns = `
  id, name, description, latitude, longitude, type, region, image_url,
  rating, created_by_user_id, is_approved, created_at, updated_at
`

const getAttractionSQL = `SELECT` + attractionColumns + `FROM attractions WHERE id = ?`

const attractionExistsSQL = `SELECT EXISTS(SELECT 1 FROM attractions WHERE id = ?)`

const listOwnedAttractionsSQL = `
SELECT id, name, region, is_approved
FROM attractions
WHERE created_by_user_id = ?
ORDER BY updated_at DESC, id DESC
`

// Seeding statements (cmd/seeder).

const ensureRoleSQL = `INSERT IGNORE INTO roles (name) VALUES (?)`

const ensureUserSQL = `
INSERT IGNORE INTO users (username, email, password_hash, total_points, role_id)
VALUES (?, ?, ?, 0, ?)
`

const seedAttractionSQL = `
INSERT INTO attractions
  (name, description, latitude, longitude, type, region, image_url, rating,
   is_approved, created_at, updated_at)
SELECT ?, ?, ?, ?, ?, ?, ?, ?, 1, UTC_TIMESTAMP(), UTC_TIMESTAMP()
FROM DUAL
WHERE NOT EXISTS (SELECT 1 FROM attractions WHERE name = ?)
`
