// Package query executes composite predicates against a record source with
// pagination and sorting.
//
// Every page is computed with two passes over the same predicate: a count of
// all matches, then a bounded window. The sort always ends with a unique
// tiebreaker key so consecutive pages of an unchanged data set partition it.
// A change to the data between the two passes, or between two page requests,
// can still shift records across page boundaries.
package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
	"github.com/chybatronik/goUserFilter/internal/types"
	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// Source is the store a predicate runs against
type Source[T any] interface {
	// Find returns the records matching p, ordered by w.Sort and cut to w's bounds
	Find(ctx context.Context, p querydsl.Predicate, w querydsl.Window) ([]T, error)
	// Count returns the number of records matching p, ignoring any window
	Count(ctx context.Context, p querydsl.Predicate) (int64, error)
}

// Observer receives the outcome of every source call
type Observer interface {
	ObserveQuery(operation string, duration time.Duration, err error)
}

// Operation names reported to observers and logs
const (
	OpCount = "count"
	OpFind  = "find"
)

// DefaultTimeout bounds one FindPage or FindAll call
const DefaultTimeout = 5 * time.Second

// Executor runs predicates against a Source. It is immutable after
// construction and safe for concurrent use.
type Executor[T any] struct {
	src         Source[T]
	tiebreaker  querydsl.Field
	sortable    map[querydsl.Field]bool
	timeout     time.Duration
	maxPageSize int
	logger      *logging.Logger
	observer    Observer
	validate    *validator.Validate
}

// NewExecutor returns an executor over src. The tiebreaker defaults to "id".
func NewExecutor[T any](src Source[T], opts ...Option) *Executor[T] {
	o := options{
		tiebreaker: "id",
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Executor[T]{
		src:         src,
		tiebreaker:  o.tiebreaker,
		timeout:     o.timeout,
		maxPageSize: o.maxPageSize,
		logger:      o.logger,
		observer:    o.observer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	if len(o.sortable) > 0 {
		e.sortable = make(map[querydsl.Field]bool, len(o.sortable)+1)
		for _, f := range o.sortable {
			e.sortable[f] = true
		}
		e.sortable[e.tiebreaker] = true
	}
	return e
}

// MaxPageSize returns the largest accepted page size, 0 when unbounded
func (e *Executor[T]) MaxPageSize() int {
	return e.maxPageSize
}

// FindPage returns the window of records matching p selected by req, with the
// total number of matches. An invalid req fails with ErrInvalidPageRequest
// before the source is called. Source and timeout errors fail with
// ErrQueryExecutionFailure.
func (e *Executor[T]) FindPage(ctx context.Context, p querydsl.Predicate, req types.PageRequest) (types.Page[T], error) {
	if err := e.validatePageRequest(req); err != nil {
		return types.Page[T]{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	total, err := e.count(ctx, p)
	if err != nil {
		return types.Page[T]{}, err
	}

	page := types.Page[T]{
		Content:       []T{},
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
	}

	// Past the last page the window pass is skipped
	if req.Page < page.TotalPages() {
		window := querydsl.Window{
			Sort:   querydsl.WithTiebreaker(req.Sort, e.tiebreaker),
			Limit:  req.Size,
			Offset: req.Offset(),
		}
		rows, err := e.find(ctx, p, window)
		if err != nil {
			return types.Page[T]{}, err
		}
		if len(rows) > req.Size {
			rows = rows[:req.Size]
		}
		page.Content = rows
	}

	e.logger.Debug("query: page served",
		logging.FieldPredicate, p.String(),
		logging.FieldPage, req.Page,
		logging.FieldPageSize, req.Size,
		logging.FieldRows, len(page.Content),
		logging.FieldTotal, total,
		logging.FieldTotalPages, page.TotalPages(),
	)

	return page, nil
}

// FindAll returns every record matching p in sort order, tiebreaker appended
func (e *Executor[T]) FindAll(ctx context.Context, p querydsl.Predicate, sort []querydsl.Order) ([]T, error) {
	if err := e.validateSort(sort); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.find(ctx, p, querydsl.Window{Sort: querydsl.WithTiebreaker(sort, e.tiebreaker)})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (e *Executor[T]) count(ctx context.Context, p querydsl.Predicate) (int64, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return 0, e.fail(OpCount, start, err)
	}

	total, err := e.src.Count(ctx, p)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return 0, e.fail(OpCount, start, err)
	}
	if total < 0 {
		return 0, e.fail(OpCount, start, fmt.Errorf("negative count %d", total))
	}

	e.succeed(OpCount, start, p, logging.FieldTotal, total)
	return total, nil
}

func (e *Executor[T]) find(ctx context.Context, p querydsl.Predicate, w querydsl.Window) ([]T, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, e.fail(OpFind, start, err)
	}

	rows, err := e.src.Find(ctx, p, w)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, e.fail(OpFind, start, err)
	}

	e.succeed(OpFind, start, p, logging.FieldRows, len(rows))
	return rows, nil
}

func (e *Executor[T]) succeed(op string, start time.Time, p querydsl.Predicate, args ...any) {
	d := time.Since(start)
	if e.observer != nil {
		e.observer.ObserveQuery(op, d, nil)
	}
	e.logger.Query(op, d, append([]any{logging.FieldPredicate, p.String()}, args...)...)
}

func (e *Executor[T]) fail(op string, start time.Time, cause error) error {
	d := time.Since(start)
	err := apperrors.QueryExecutionFailure(op, cause)
	if e.observer != nil {
		e.observer.ObserveQuery(op, d, err)
	}
	e.logger.QueryError(op, err, logging.FieldDurationMs, d.Milliseconds())
	return err
}

func (e *Executor[T]) validatePageRequest(req types.PageRequest) error {
	if err := e.validate.Struct(req); err != nil {
		return invalidFromValidator(err)
	}
	if e.maxPageSize > 0 && req.Size > e.maxPageSize {
		return apperrors.InvalidPageRequest("size must not exceed %d", e.maxPageSize)
	}
	if req.Page > math.MaxInt/req.Size {
		return apperrors.InvalidPageRequest("page %d is out of range", req.Page)
	}
	return e.validateSort(req.Sort)
}

func (e *Executor[T]) validateSort(sort []querydsl.Order) error {
	seen := make(map[querydsl.Field]bool, len(sort))
	for _, o := range sort {
		if o.Field == "" {
			return apperrors.InvalidPageRequest("sort field must not be empty")
		}
		if !o.Direction.Valid() {
			return apperrors.InvalidPageRequest("sort direction for %s must be ASC or DESC", o.Field)
		}
		if e.sortable != nil && !e.sortable[o.Field] {
			return apperrors.InvalidPageRequest("cannot sort by %s", o.Field)
		}
		if seen[o.Field] {
			return apperrors.InvalidPageRequest("duplicate sort field %s", o.Field)
		}
		seen[o.Field] = true
	}
	return nil
}

func invalidFromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.InvalidPageRequest("%v", err)
	}

	fe := verrs[0]
	switch fe.StructField() {
	case "Page":
		return apperrors.InvalidPageRequest("page must be greater than or equal to 0, got %v", fe.Value())
	case "Size":
		return apperrors.InvalidPageRequest("size must be greater than 0, got %v", fe.Value())
	default:
		return apperrors.InvalidPageRequest("%s failed on %s", fe.Namespace(), fe.Tag())
	}
}
