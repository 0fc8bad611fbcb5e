package audit

import (
	"context"
	"fmt"
)

// Service coordinates audit timeline reads with paging.
type Service struct {
	repo Repository
}

// NewService returns a new audit timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline fetches audit rows with clamped paging.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, total, err := s.repo.Timeline(ctx, filters, pageSize, offset)
	if err != nil {
		return Result{}, err
	}
	if rows == nil {
		rows = []TimelineRow{}
	}
	return Result{
		Rows:   rows,
		Paging: PagingInfo{Page: page, PageSize: pageSize, Total: total},
	}, nil
}
