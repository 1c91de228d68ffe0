package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/models"
)

type CreateReviewRequest struct {
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
}

func (r CreateReviewRequest) validate() error {
	switch {
	case r.UserID == "":
		return fmt.Errorf("%w: user is required", database.ErrReviewInvalid)
	case r.Rating < 1 || r.Rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5", database.ErrReviewInvalid)
	case strings.TrimSpace(r.Comment) == "":
		return fmt.Errorf("%w: comment is required", database.ErrReviewInvalid)
	case strings.TrimSpace(r.UserName) == "":
		return fmt.Errorf("%w: display name is required", database.ErrReviewInvalid)
	}
	return nil
}

const reviewColumns = `id, product_id, user_id, user_name, rating, comment, created_at`

func scanReview(row rowScanner, review *models.Review) error {
	return row.Scan(
		&review.ID,
		&review.ProductID,
		&review.UserID,
		&review.UserName,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
}

// CreateReview inserts the review and refreshes the product's average rating
// in the same serializable transaction.
func CreateReview(ctx context.Context, db *sql.DB, req CreateReviewRequest) (*models.Review, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(req.ProductID); err != nil {
		return nil, database.ErrProductNotFound
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		return nil, database.ErrUserNotFound
	}

	review := &models.Review{}

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)",
			req.ProductID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return database.ErrProductNotFound
		}

		err = scanReview(tx.QueryRowContext(ctx,
			`INSERT INTO reviews (product_id, user_id, user_name, rating, comment, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())
			 RETURNING `+reviewColumns,
			req.ProductID, req.UserID, strings.TrimSpace(req.UserName), req.Rating, strings.TrimSpace(req.Comment)),
			review)
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE products
			 SET rating = (SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE product_id = $1)
			 WHERE id = $1`,
			req.ProductID)
		if err != nil {
			return fmt.Errorf("update product rating: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// ListReviews returns every review of a product, newest first. Products that
// are not stored (seed fixtures) simply have no reviews.
func ListReviews(ctx context.Context, db *sql.DB, productID string) ([]models.Review, error) {
	reviews := []models.Review{}
	if _, err := uuid.Parse(productID); err != nil {
		return reviews, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+reviewColumns+`
		 FROM reviews
		 WHERE product_id = $1
		 ORDER BY created_at DESC, id DESC`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var review models.Review
		if err := scanReview(rows, &review); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return reviews, nil
}

func ListReviewsCursor(ctx context.Context, db *sql.DB, productID string, cursor string, limit int) (*CursorPage, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return &CursorPage{Items: []models.Review{}}, nil
	}

	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1
		  AND (created_at, id) < ($2, $3::uuid)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, productID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var review models.Review
		if err := scanReview(rows, &review); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(reviews) > limit
	if hasMore {
		reviews = reviews[:limit]
	}

	var nextCursor string
	if hasMore && len(reviews) > 0 {
		last := reviews[len(reviews)-1]
		nextCursor = EncodeCursor(ReviewCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return &CursorPage{
		Items:      reviews,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// IsNotFound reports whether err means the referenced row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, database.ErrProductNotFound) || errors.Is(err, database.ErrUserNotFound)
}
