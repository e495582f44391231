// Package pkg holds the importable packages of goUserFilter.
//
//   - errors: caller-facing user errors and the query error kinds
//     (invalid page request, query execution failure, mapping failure)
//
// Example usage:
//
//	import "github.com/chybatronik/goUserFilter/pkg/errors"
//
//	if errors.IsInvalidPageRequest(err) {
//		userErr := errors.NewUserValidationError(errors.ErrCodeInvalidPageParams, "Invalid page request")
//		http.Error(w, userErr.Error(), userErr.GetHTTPStatus())
//	}
package pkg
