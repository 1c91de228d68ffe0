package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/perfura/storefront/internal/database"
)

type CursorPage struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

type OffsetPage struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

func newOffsetPage(items interface{}, total int64, page, pageSize int) *OffsetPage {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ReviewCursor marks the last review of a page in (created_at, id) order.
type ReviewCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

const maxUUID = "ffffffff-ffff-ffff-ffff-ffffffffffff"

// firstPageTime sorts after any review timestamp, whatever the clock skew
// between the service and the database.
var firstPageTime = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

func EncodeCursor(cursor ReviewCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor returns a cursor positioned before every row when encoded is
// empty. Malformed cursors fail with database.ErrInvalidCursor.
func DecodeCursor(encoded string) (ReviewCursor, error) {
	var cursor ReviewCursor
	if encoded == "" {
		return ReviewCursor{
			CreatedAt: firstPageTime,
			ID:        maxUUID,
		}, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return cursor, fmt.Errorf("%w: %v", database.ErrInvalidCursor, err)
	}
	if err := json.Unmarshal(data, &cursor); err != nil {
		return cursor, fmt.Errorf("%w: %v", database.ErrInvalidCursor, err)
	}
	if _, err := uuid.Parse(cursor.ID); err != nil {
		return cursor, fmt.Errorf("%w: %v", database.ErrInvalidCursor, err)
	}
	return cursor, nil
}
