package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42"})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	assert.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%not-base64%%%")
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestPaginationLimit(t *testing.T) {
	assert.Equal(t, 10, Pagination{}.Limit())
	assert.Equal(t, 25, Pagination{PageSize: 25}.Limit())
	assert.Equal(t, 250, Pagination{PageSize: 9000}.Limit())
}

func TestBuildCursorPageInfo(t *testing.T) {
	type row struct{ ID string }
	cursorFor := func(r row) Cursor { return Cursor{ID: r.ID} }

	items, info, err := BuildCursorPageInfo([]row{}, 2, cursorFor)
	assert.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, info.HasMore)

	items, info, err = BuildCursorPageInfo([]row{{ID: "a"}, {ID: "b"}, {ID: "c"}}, 2, cursorFor)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, info.HasMore)

	cursor, err := DecodeCursor(info.NextPageToken)
	assert.NoError(t, err)
	assert.Equal(t, "b", cursor.ID)
}
