package memory

import (
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/utils/pagination"
)

type cursorKey struct {
	createdAt time.Time
	id        int64
}

func compareKeys(a, b cursorKey) int {
	if c := a.createdAt.Compare(b.createdAt); c != 0 {
		return c
	}
	switch {
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	}
	return 0
}

// paginate orders items by (createdAt, id), skips everything up to and
// including the cursor and cuts a page of limit items. It mirrors the
// tuple-comparison queries of the Postgres repositories.
func paginate[T any](items []T, key func(T) cursorKey, descending bool, limit int, nextToken *string) ([]T, *string, error) {
	limit = pagination.NormalizeLimit(limit)

	order := func(a, b T) int {
		c := compareKeys(key(a), key(b))
		if descending {
			return -c
		}
		return c
	}
	slices.SortFunc(items, order)

	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		cursor := cursorKey{createdAt: createdAt, id: id}
		start := len(items)
		for i, item := range items {
			c := compareKeys(key(item), cursor)
			if (descending && c < 0) || (!descending && c > 0) {
				start = i
				break
			}
		}
		items = items[start:]
	}

	if len(items) <= limit {
		return items, nil, nil
	}
	last := key(items[limit-1])
	token := pagination.EncodeToken(last.createdAt, last.id)
	return items[:limit], &token, nil
}
