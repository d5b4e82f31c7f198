package db

import (
	"context"

	"gorm.io/gorm"
)

// Conn scopes a repo call to tx when one is open, otherwise to base.
func Conn(ctx context.Context, base, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}

// FindIn loads every T whose column matches one of keys. An empty key set
// returns an empty slice without querying.
func FindIn[T any, K any](q *gorm.DB, column string, keys []K, order ...string) ([]*T, error) {
	out := []*T{}
	if len(keys) == 0 {
		return out, nil
	}
	q = q.Where(column+" IN ?", keys)
	for _, o := range order {
		q = q.Order(o)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAll inserts rows in one statement and hands them back with
// generated fields populated.
func CreateAll[T any](q *gorm.DB, rows []*T) ([]*T, error) {
	if len(rows) == 0 {
		return []*T{}, nil
	}
	if err := q.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
