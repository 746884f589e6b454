package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

const (
	defaultPageSize = 10
	maxPageSize     = 250
)

// ErrInvalidPageToken reports a page token that could not be decoded.
var ErrInvalidPageToken = errors.New("invalid_page_token")

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=10" validate:"gte=1,lte=250"` // Min 1, Max 250
}

// Limit clamps the requested page size into the allowed range.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return defaultPageSize
	}
	if p.PageSize > maxPageSize {
		return maxPageSize
	}
	return p.PageSize
}

// Cursor marks the last row of a page. Snowflake ids are time ordered,
// so the id alone is a stable keyset position.
type Cursor struct {
	ID string `json:"id,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrInvalidPageToken
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, ErrInvalidPageToken
	}

	return &cursor, nil
}

// BuildCursorPageInfo trims an over-fetched result set (limit+1 rows) to
// one page and encodes the next cursor from its last row.
func BuildCursorPageInfo[T any](items []T, limit int, cursorFor func(T) Cursor) ([]T, *PageInfo, error) {
	if limit <= 0 || len(items) <= limit {
		return items, &PageInfo{}, nil
	}

	items = items[:limit]
	token, err := EncodeCursor(cursorFor(items[len(items)-1]))
	if err != nil {
		return nil, nil, err
	}

	return items, &PageInfo{NextPageToken: token, HasMore: true}, nil
}
