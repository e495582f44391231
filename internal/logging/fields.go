package logging

// Standard log field names
const (
	FieldRequestID    = "req_id"
	FieldHTTPMethod   = "method"
	FieldHTTPPath     = "path"
	FieldHTTPStatus   = "status"
	FieldLatencyMs    = "latency_ms"
	FieldService      = "service"
	FieldVersion      = "version"
	FieldError        = "error"
	FieldResponseTime = "response_time_ms"
	FieldComponent    = "component"

	FieldOperation  = "operation"
	FieldDurationMs = "duration_ms"
	FieldPredicate  = "predicate"
	FieldSort       = "sort"
	FieldPage       = "page"
	FieldPageSize   = "size"
	FieldTotal      = "total_elements"
	FieldTotalPages = "total_pages"
	FieldRows       = "rows"
	FieldSQL        = "sql"
)

// Log levels
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)
