package store

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/perfura/storefront/internal/database"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := ReviewCursor{
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ID:        "7b7c5a0e-4d7e-4e0b-9a6f-3f1f1d2a9c11",
	}

	out, err := DecodeCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)
}

func TestDecodeEmptyCursorStartsAtTop(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	require.Equal(t, maxUUID, cursor.ID)
	require.True(t, cursor.CreatedAt.After(time.Now().AddDate(100, 0, 0)))
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, encoded := range []string{
		"%%%",
		base64.URLEncoding.EncodeToString([]byte("not json")),
		EncodeCursor(ReviewCursor{CreatedAt: time.Now(), ID: "42"}),
	} {
		_, err := DecodeCursor(encoded)
		require.ErrorIs(t, err, database.ErrInvalidCursor, encoded)
	}
}

func TestOffsetPageCountsPartialPages(t *testing.T) {
	page := newOffsetPage([]int{1, 2}, 5, 1, 2)
	require.Equal(t, 3, page.TotalPages)

	page = newOffsetPage([]int{}, 0, 1, 20)
	require.Equal(t, 0, page.TotalPages)
}
