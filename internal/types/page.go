package types

import (
	"github.com/chybatronik/goUserFilter/internal/querydsl"
	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// DefaultPageSize is used when a request carries no size
const DefaultPageSize = 20

// PageRequest selects one window of a sorted result. Page is zero-based.
type PageRequest struct {
	Page int              `validate:"gte=0"`
	Size int              `validate:"gt=0"`
	Sort []querydsl.Order `validate:"dive"`
}

// Offset is the number of records before the requested page
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// Page is one window of a query result plus the total match count
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
}

// TotalPages is ceil(TotalElements / Size)
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

// Metadata describes the position of a page in the full result
type Metadata struct {
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
}

// PageResponse is the wire envelope of a page
type PageResponse[T any] struct {
	Content  []T      `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// NewPageResponse maps every record of page with mapFn, keeping order. Size in
// the metadata is the requested size, not the number of records returned.
// The first mapping error aborts shaping; no partial response is returned.
func NewPageResponse[E, D any](page Page[E], mapFn func(E) (D, error)) (PageResponse[D], error) {
	content := make([]D, 0, len(page.Content))
	for i, record := range page.Content {
		dto, err := mapFn(record)
		if err != nil {
			return PageResponse[D]{}, apperrors.MappingFailure(i, err)
		}
		content = append(content, dto)
	}

	return PageResponse[D]{
		Content: content,
		Metadata: Metadata{
			Page:          page.Number,
			Size:          page.Size,
			TotalElements: page.TotalElements,
		},
	}, nil
}
