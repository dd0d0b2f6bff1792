// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// CursorPage selects a bounded slice of a time-ordered collection. Before
// and After are record IDs acting as opaque cursors, not offsets, so the
// resume point stays stable under concurrent inserts ahead of it.
//
// The total order is created_at DESC, id ASC; the id tie-break keeps
// pagination deterministic when timestamps collide.
//
//   - After=X: up to Limit records strictly after X in the order (older),
//     excluding X itself.
//   - Before=X: up to Limit records strictly before X (newer), excluding X,
//     taken from the tail end of that range so backward paging resumes
//     adjacent to the cursor.
//   - When both are set, After wins and Before is ignored.
//   - Limit 0 means unbounded; callers should normally supply one.
type CursorPage struct {
	Limit  int
	Before uint
	After  uint
}

// OffsetPage is plain skip/take over an ordered candidate set. No cursor
// stability: concurrent inserts can shift results.
type OffsetPage struct {
	Limit int
	Skip  int
}

// cursorRef holds the ordering keys of the record a cursor points at.
type cursorRef struct {
	CreatedAt time.Time
	ID        uint
}

// resolveCursor looks up the ordering keys for a cursor ID. A cursor
// pointing at a missing record yields (nil, nil): the scan treats it as an
// empty range rather than an error, consistent with absence never throwing
// at this layer.
func resolveCursor[T any](db *gorm.DB, table string, id uint) (*cursorRef, error) {
	var ref cursorRef
	err := db.Model(new(T)).
		Select(table+".created_at", table+".id").
		Where(table+".id = ?", id).
		Take(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// CursorScan executes a cursor-paginated scan of q, a query over table, and
// stores the result in dest in canonical created_at DESC, id ASC order.
// Zero rows is an empty slice, never an error; callers decide whether empty
// is a failure.
func CursorScan[T any](db *gorm.DB, q *gorm.DB, table string, page CursorPage, dest *[]*T) error {
	order := table + ".created_at DESC, " + table + ".id ASC"
	reverseOrder := table + ".created_at ASC, " + table + ".id DESC"

	switch {
	case page.After != 0:
		ref, err := resolveCursor[T](db, table, page.After)
		if err != nil {
			return err
		}
		if ref == nil {
			*dest = nil
			return nil
		}
		q = q.Where(
			table+".created_at < ? OR ("+table+".created_at = ? AND "+table+".id > ?)",
			ref.CreatedAt, ref.CreatedAt, ref.ID,
		).Order(order)
		if page.Limit > 0 {
			q = q.Limit(page.Limit)
		}
		return q.Find(dest).Error

	case page.Before != 0:
		ref, err := resolveCursor[T](db, table, page.Before)
		if err != nil {
			return err
		}
		if ref == nil {
			*dest = nil
			return nil
		}
		// Scan the newer range from the cursor outwards (reverse order) so
		// Limit keeps the records adjacent to the cursor, then flip back to
		// canonical order.
		q = q.Where(
			table+".created_at > ? OR ("+table+".created_at = ? AND "+table+".id < ?)",
			ref.CreatedAt, ref.CreatedAt, ref.ID,
		).Order(reverseOrder)
		if page.Limit > 0 {
			q = q.Limit(page.Limit)
		}
		if err := q.Find(dest).Error; err != nil {
			return err
		}
		reverse(*dest)
		return nil

	default:
		q = q.Order(order)
		if page.Limit > 0 {
			q = q.Limit(page.Limit)
		}
		return q.Find(dest).Error
	}
}

// ApplyOffset applies skip/take pagination ordered ascending by id.
func ApplyOffset(q *gorm.DB, table string, page OffsetPage) *gorm.DB {
	q = q.Order(table + ".id ASC")
	if page.Skip > 0 {
		q = q.Offset(page.Skip)
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	return q
}

func reverse[T any](s []*T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
