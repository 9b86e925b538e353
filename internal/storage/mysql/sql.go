package mysql

// Schema is executed by cmd/api on startup and by the integration tests
// against a throwaway container. `respect_house_rules` keeps the wire name
// of the category it stores.
const Schema = `
CREATE TABLE IF NOT EXISTS reviews (
  id                  CHAR(36)      NOT NULL,
  external_id         VARCHAR(128)  NOT NULL,
  property_name       VARCHAR(255)  NOT NULL,
  guest_name          VARCHAR(255)  NOT NULL,
  review_text         TEXT          NOT NULL,
  overall_rating      DOUBLE        NOT NULL DEFAULT 0,
  cleanliness         DOUBLE        NOT NULL DEFAULT 0,
  communication       DOUBLE        NOT NULL DEFAULT 0,
  respect_house_rules DOUBLE        NOT NULL DEFAULT 0,
  submitted_at        DATETIME      NULL,
  channel             VARCHAR(32)   NOT NULL,
  status              VARCHAR(32)   NOT NULL,
  review_type         VARCHAR(32)   NOT NULL,
  is_approved         TINYINT(1)    NOT NULL DEFAULT 0,
  approved_at         DATETIME      NULL,
  approved_by         VARCHAR(255)  NULL,
  created_at          DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at          DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_reviews_external_id (external_id),
  KEY idx_reviews_property (property_name),
  KEY idx_reviews_submitted (submitted_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const insertReviewSQL = `
INSERT INTO reviews
  (id, external_id, property_name, guest_name, review_text,
   overall_rating, cleanliness, communication, respect_house_rules,
   submitted_at, channel, status, review_type, is_approved)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Upsert refreshes the content and classification columns only. The
// moderation columns (is_approved, approved_at, approved_by) keep their
// stored values across re-syncs.
const upsertReviewSQL = `
INSERT INTO reviews
  (id, external_id, property_name, guest_name, review_text,
   overall_rating, cleanliness, communication, respect_house_rules,
   submitted_at, channel, status, review_type, is_approved)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  property_name       = VALUES(property_name),
  guest_name          = VALUES(guest_name),
  review_text         = VALUES(review_text),
  overall_rating      = VALUES(overall_rating),
  cleanliness         = VALUES(cleanliness),
  communication       = VALUES(communication),
  respect_house_rules = VALUES(respect_house_rules),
  submitted_at        = VALUES(submitted_at),
  channel             = VALUES(channel),
  status              = VALUES(status),
  review_type         = VALUES(review_type),
  updated_at          = CURRENT_TIMESTAMP
`

const updateReviewSQL = `
UPDATE reviews SET
  external_id         = ?,
  property_name       = ?,
  guest_name          = ?,
  review_text         = ?,
  overall_rating      = ?,
  cleanliness         = ?,
  communication       = ?,
  respect_house_rules = ?,
  submitted_at        = ?,
  channel             = ?,
  status              = ?,
  review_type         = ?,
  updated_at          = CURRENT_TIMESTAMP
WHERE id = ?
`

const approveReviewSQL = `
UPDATE reviews SET
  is_approved = 1,
  approved_at = ?,
  approved_by = ?,
  updated_at  = CURRENT_TIMESTAMP
WHERE id = ?
`

const removeApprovalSQL = `
UPDATE reviews SET
  is_approved = 0,
  approved_at = NULL,
  approved_by = NULL,
  updated_at  = CURRENT_TIMESTAMP
WHERE id = ?
`

const selectColumns = `
  id, external_id, property_name, guest_name, review_text,
  overall_rating, cleanliness, communication, respect_house_rules,
  submitted_at, channel, status, review_type, is_approved,
  approved_at, approved_by, created_at, updated_at
`

const getReviewSQL = `SELECT` + selectColumns + `FROM reviews WHERE id = ?`

const getReviewByExternalSQL = `SELECT` + selectColumns + `FROM reviews WHERE external_id = ?`
