package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
	"github.com/chybatronik/goUserFilter/internal/types"
	"github.com/chybatronik/goUserFilter/internal/validation"
	pkgerrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// Query parameter names
const (
	paramFirstName = "firstName"
	paramLastName  = "lastName"
	paramBirthDate = "birthDate"
	paramPage      = "page"
	paramSize      = "size"
	paramSort      = "sort"
	paramRole      = "role"
)

// maxFilterLength bounds free-text filter values in bytes
const maxFilterLength = 100

// parseUserFilter reads firstName, lastName and birthDate. Missing or blank
// parameters leave the criterion absent.
func parseUserFilter(values url.Values) (types.UserFilter, error) {
	if err := validation.ValidateQueryValues(values, maxFilterLength, paramFirstName, paramLastName); err != nil {
		if validation.IsSecurityViolation(err) {
			return types.UserFilter{}, pkgerrors.NewUserValidationError("UNICODE_SECURITY_VIOLATION", "Invalid characters in filter")
		}
		return types.UserFilter{}, pkgerrors.NewUserValidationError(pkgerrors.ErrCodeFilterInvalid,
			"Filter values cannot exceed 100 characters")
	}

	var filter types.UserFilter
	if v := strings.TrimSpace(values.Get(paramFirstName)); v != "" {
		filter.FirstName = &v
	}
	if v := strings.TrimSpace(values.Get(paramLastName)); v != "" {
		filter.LastName = &v
	}
	if v := strings.TrimSpace(values.Get(paramBirthDate)); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return types.UserFilter{}, pkgerrors.NewUserValidationError(pkgerrors.ErrCodeFilterInvalid,
				"Invalid birthDate parameter. Must be a date in YYYY-MM-DD format")
		}
		filter.BirthDate = &d.Time
	}
	return filter, nil
}

// parsePageRequest reads page, size and sort. Range checks are left to the
// query executor; only malformed values are rejected here.
func parsePageRequest(values url.Values, defaultSize int) (types.PageRequest, error) {
	req := types.PageRequest{Size: defaultSize}

	if v := values.Get(paramPage); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return types.PageRequest{}, pkgerrors.InvalidPageRequest("page must be an integer")
		}
		req.Page = page
	}
	if v := values.Get(paramSize); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return types.PageRequest{}, pkgerrors.InvalidPageRequest("size must be an integer")
		}
		req.Size = size
	}

	sort, err := parseSort(values[paramSort])
	if err != nil {
		return types.PageRequest{}, err
	}
	req.Sort = sort
	return req, nil
}

// parseSort accepts repeated "field" or "field,dir" values. A missing
// direction is ascending.
func parseSort(raw []string) ([]querydsl.Order, error) {
	var orders []querydsl.Order
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		field, dir, _ := strings.Cut(s, ",")
		direction, err := querydsl.ParseDirection(dir)
		if err != nil {
			return nil, pkgerrors.InvalidPageRequest("sort direction for %s must be asc or desc", strings.TrimSpace(field))
		}
		orders = append(orders, querydsl.Order{
			Field:     querydsl.Field(strings.TrimSpace(field)),
			Direction: direction,
		})
	}
	return orders, nil
}

// parseRole reads the optional role filter
func parseRole(values url.Values) (models.Role, error) {
	role := models.Role(strings.ToUpper(strings.TrimSpace(values.Get(paramRole))))
	if role != "" && !role.Valid() {
		return "", pkgerrors.MapValidationError("role", "oneof")
	}
	return role, nil
}

// parseIDParam reads a positive int64 path parameter
func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.NewUserValidationError(pkgerrors.ErrCodeIDInvalid, "ID must be a positive integer")
	}
	return id, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
