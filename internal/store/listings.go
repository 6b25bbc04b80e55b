package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/swipswaps/marketplace-bulk-editor/internal/listing"
)

// StoredListing is a listing row with its persistence timestamps.
type StoredListing struct {
	listing.Listing
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListingRepo persists listings per user.
type ListingRepo struct {
	db DBTX
}

// SaveAll upserts the given listings for a user and returns how many rows
// were written. Rows without an ID get one assigned.
func (r *ListingRepo) SaveAll(ctx context.Context, userID string, rows []listing.Listing) (int, error) {
	saved := 0
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		tag, err := r.db.Exec(ctx,
			`INSERT INTO listings
			     (id, user_id, title, price, condition, description, category, offer_shipping)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE SET
			     title          = EXCLUDED.title,
			     price          = EXCLUDED.price,
			     condition      = EXCLUDED.condition,
			     description    = EXCLUDED.description,
			     category       = EXCLUDED.category,
			     offer_shipping = EXCLUDED.offer_shipping,
			     updated_at     = now()
			 WHERE listings.user_id = EXCLUDED.user_id`,
			rows[i].ID, userID, rows[i].Title, rows[i].Price,
			string(rows[i].Condition), rows[i].Description,
			rows[i].Category, string(rows[i].OfferShipping),
		)
		if err != nil {
			return saved, err
		}
		saved += int(tag.RowsAffected())
	}
	return saved, nil
}

// List returns a page of the user's listings, oldest first, plus the total
// count.
func (r *ListingRepo) List(ctx context.Context, userID string, limit, offset int) ([]StoredListing, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	total := 0
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM listings WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, title, price, condition, description, category, offer_shipping,
		        created_at, updated_at
		 FROM listings
		 WHERE user_id = $1
		 ORDER BY created_at, id
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []StoredListing
	for rows.Next() {
		var l StoredListing
		var cond, ship string
		if err := rows.Scan(&l.ID, &l.Title, &l.Price, &cond, &l.Description,
			&l.Category, &ship, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		l.Condition = listing.ParseCondition(cond)
		l.OfferShipping = listing.ParseShipping(ship)
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// Delete removes the given listings for a user and returns how many rows
// were deleted. IDs owned by other users are ignored.
func (r *ListingRepo) Delete(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM listings WHERE user_id = $1 AND id = ANY($2)`,
		userID, ids,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// DeleteAll removes every listing for a user.
func (r *ListingRepo) DeleteAll(ctx context.Context, userID string) (int, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM listings WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CleanupDuplicates deletes duplicate listings for a user, keeping the
// oldest row of each (title, price, condition) group. Returns the number
// deleted.
func (r *ListingRepo) CleanupDuplicates(ctx context.Context, userID string) (int, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM listings
		 WHERE id IN (
		     SELECT id FROM (
		         SELECT id,
		                row_number() OVER (
		                    PARTITION BY title, price, condition
		                    ORDER BY created_at, id
		                ) AS rn
		         FROM listings
		         WHERE user_id = $1
		     ) ranked
		     WHERE ranked.rn > 1
		 )`,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
