// Package types provides the request and result shapes shared by the
// goUserFilter query layer, service and handlers.
package types

import (
	"time"

	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
)

// UserFilter holds the optional user search criteria. A nil field, or a
// blank text field, does not restrict the result.
type UserFilter struct {
	FirstName *string    // first name contains, ignoring case
	LastName  *string    // last name contains, ignoring case
	BirthDate *time.Time // born strictly before

	CompanyID *int64
	Role      *models.Role
}

// Predicate composes the present criteria into one AND predicate. Conditions
// are added in a fixed order: first name, last name, birth date, company, role.
func (f UserFilter) Predicate() querydsl.Predicate {
	b := querydsl.NewBuilder()
	querydsl.Add(b, f.FirstName, querydsl.ContainsFold(models.FieldFirstName))
	querydsl.Add(b, f.LastName, querydsl.ContainsFold(models.FieldLastName))
	querydsl.Add(b, f.BirthDate, querydsl.Before(models.FieldBirthDate))
	querydsl.Add(b, f.CompanyID, querydsl.Equal[int64](models.FieldCompanyID))
	querydsl.Add(b, f.Role, func(r models.Role) querydsl.Condition {
		return querydsl.Equal[string](models.FieldRole)(string(r))
	})
	return b.Build()
}

// IsEmpty reports whether no criterion is present
func (f UserFilter) IsEmpty() bool {
	return f.Predicate().IsIdentity()
}
