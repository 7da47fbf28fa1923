package mysql

const getAccountSQL = `
SELECT
  id,
  business_id,
  current_rating,
  tot_review,
  business_details,
  business_details_edited_at,
  review_data,
  review_data_date
FROM accounts
WHERE id = ?
`

// Both cache pairs are always overwritten together; identity and rating
// columns keep their old value when the new one is NULL.
const upsertAccountSQL = `
INSERT INTO accounts
  (id, business_id, current_rating, tot_review,
   business_details, business_details_edited_at, review_data, review_data_date)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  business_id                = COALESCE(VALUES(business_id), accounts.business_id),
  current_rating             = COALESCE(VALUES(current_rating), accounts.current_rating),
  tot_review                 = COALESCE(VALUES(tot_review), accounts.tot_review),
  business_details           = VALUES(business_details),
  business_details_edited_at = VALUES(business_details_edited_at),
  review_data                = VALUES(review_data),
  review_data_date           = VALUES(review_data_date)
`
