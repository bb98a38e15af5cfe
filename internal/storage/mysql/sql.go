package mysql

// -----------------------------------------------------------------------------
// ACCOUNTS
// -----------------------------------------------------------------------------

const findAccountByEmailSQL = `
SELECT id, email, password_hash, verified, verification_token_hash, verification_token_expires, created_at
FROM accounts
WHERE email = ?
`

const insertAccountSQL = `
INSERT INTO accounts
  (id, email, password_hash, verified, verification_token_hash, verification_token_expires, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

// Verification and token consumption happen in one statement so a token
// can never be redeemed twice.
const verifyAccountSQL = `
UPDATE accounts
SET verified = 1,
    verification_token_hash = NULL,
    verification_token_expires = NULL
WHERE verification_token_hash = ?
  AND verification_token_expires > ?
`

// -----------------------------------------------------------------------------
// REVIEWS
// -----------------------------------------------------------------------------

const reviewColumns = "id, kind, entity_key, account_id, author, term, attributes, ratings, `comment`, created_at, updated_at, version"

const insertReviewSQL = "INSERT INTO reviews\n  (" + reviewColumns + ")\nVALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

// updated_at and version always change, so RowsAffected equals rows matched.
const updateReviewSQL = "UPDATE reviews\n" +
	"SET term = ?, attributes = ?, ratings = ?, `comment` = ?, updated_at = ?, version = version + 1\n" +
	"WHERE kind = ? AND id = ? AND account_id = ?"

const updateReviewVersionClause = " AND version = ?"

const deleteReviewSQL = `DELETE FROM reviews WHERE kind = ? AND id = ? AND account_id = ?`

const findReviewSQL = "SELECT " + reviewColumns + " FROM reviews WHERE kind = ? AND id = ?"

const findReviewsSQL = "SELECT " + reviewColumns + " FROM reviews WHERE kind = ? AND entity_key = ? ORDER BY created_at DESC, id"

// sum of one rating dimension; the JSON path is bound as a parameter
const sumDimensionExpr = "SUM(COALESCE(CAST(JSON_UNQUOTE(JSON_EXTRACT(ratings, ?)) AS DECIMAL(10,4)), 0))"

// -----------------------------------------------------------------------------
// CATALOG
// -----------------------------------------------------------------------------

// ON DUPLICATE keeps the existing id so catalog links stay stable across loads.
const upsertEntitySQL = `
INSERT INTO entities
  (id, kind, entity_key, name, department, faculty, instructor, email, phone, office, description, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name        = VALUES(name),
  department  = VALUES(department),
  faculty     = VALUES(faculty),
  instructor  = VALUES(instructor),
  email       = VALUES(email),
  phone       = VALUES(phone),
  office      = VALUES(office),
  description = VALUES(description),
  raw         = VALUES(raw)
`

const entityColumns = "id, kind, entity_key, name, department, faculty, instructor, email, phone, office, description, raw"

const listEntitiesSQL = "SELECT " + entityColumns + " FROM entities WHERE kind = ? ORDER BY entity_key, id LIMIT ? OFFSET ?"

const countEntitiesSQL = `SELECT COUNT(*) FROM entities WHERE kind = ?`

const findEntitySQL = "SELECT " + entityColumns + " FROM entities WHERE kind = ? AND id = ?"
