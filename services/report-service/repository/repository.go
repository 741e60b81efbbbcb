// Package repository holds the Mongo persistence behind the service layer.
// Interfaces are defined here so the services can be exercised against
// in-memory stubs.
package repository

import (
	"errors"
	"time"
)

var (
	ErrReportNotFound   = errors.New("report not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateName    = errors.New("name already in use")
)

type Page struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.SortBy == "" {
		p.SortBy = "created_at"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	return p
}

func (p Page) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPagination(p Page, total int64) Pagination {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// ReportFilter narrows admin report listings.
type ReportFilter struct {
	Status     string
	CategoryID string
	AssignedTo string
	Severity   string
	Search     string
	From       *time.Time
	To         *time.Time
}
