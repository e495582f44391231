package query

import (
	"time"

	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
)

type options struct {
	tiebreaker  querydsl.Field
	sortable    []querydsl.Field
	timeout     time.Duration
	maxPageSize int
	logger      *logging.Logger
	observer    Observer
}

// Option configures an Executor
type Option func(*options)

// WithTiebreaker sets the unique field appended to every sort
func WithTiebreaker(field querydsl.Field) Option {
	return func(o *options) {
		if field != "" {
			o.tiebreaker = field
		}
	}
}

// WithSortable restricts sort keys to fields. The tiebreaker is always allowed.
func WithSortable(fields ...querydsl.Field) Option {
	return func(o *options) {
		o.sortable = append(o.sortable, fields...)
	}
}

// WithTimeout bounds each FindPage/FindAll call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxPageSize rejects page requests larger than n; 0 leaves size unbounded
func WithMaxPageSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxPageSize = n
		}
	}
}

// WithLogger logs query passes to logger
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver reports query passes to observer
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}
