package handler

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// PageReq is bound from the query string of every list endpoint.
// Pagination is offset based; the response carries the total count so the
// client can compute the page count.
type PageReq struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize,default=20" binding:"omitempty,min=1,max=200"`
}

func (p PageReq) Offset() int { return (p.Page - 1) * p.PageSize }

// ListResp is the uniform list envelope: one page of rows plus the total.
type ListResp[T any] struct {
	Rows  []T   `json:"rows"`
	Total int64 `json:"total"`
}

// DateRangeReq holds the optional created_at bounds of date-bounded lists.
type DateRangeReq struct {
	CreatedFrom *time.Time `form:"createdFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	CreatedTo   *time.Time `form:"createdTo" time_format:"2006-01-02T15:04:05Z07:00"`
}

func applyDateRange(tx *gorm.DB, r DateRangeReq) *gorm.DB {
	if r.CreatedFrom != nil {
		tx = tx.Where("created_at >= ?", *r.CreatedFrom)
	}
	if r.CreatedTo != nil {
		tx = tx.Where("created_at <= ?", *r.CreatedTo)
	}
	return tx
}

// applySearch adds a case-insensitive substring match across the given
// columns, OR-combined. Postgres gets ILIKE; other dialects (sqlite in
// tests) fall back to LIKE, which is already case-insensitive for ASCII.
func applySearch(tx *gorm.DB, search string, columns ...string) *gorm.DB {
	if search == "" || len(columns) == 0 {
		return tx
	}
	op := "LIKE"
	if tx.Dialector.Name() == "postgres" {
		op = "ILIKE"
	}
	pattern := "%" + search + "%"
	cond := tx.Session(&gorm.Session{NewDB: true}).
		Where(columns[0]+" "+op+" ?", pattern)
	for _, column := range columns[1:] {
		cond = cond.Or(column+" "+op+" ?", pattern)
	}
	return tx.Where(cond)
}

// IDReq binds the :id path parameter.
type IDReq struct {
	ID uint `uri:"id" binding:"required"`
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
