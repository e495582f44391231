package models

import (
	"github.com/chybatronik/goUserFilter/internal/querydsl"
)

// User fields addressable by filters and sort keys
const (
	FieldID          querydsl.Field = "id"
	FieldUsername    querydsl.Field = "username"
	FieldFirstName   querydsl.Field = "firstName"
	FieldLastName    querydsl.Field = "lastName"
	FieldBirthDate   querydsl.Field = "birthDate"
	FieldRole        querydsl.Field = "role"
	FieldCompanyID   querydsl.Field = "companyId"
	FieldCompanyName querydsl.Field = "companyName"
)

// SortableFields lists the fields a client may sort users by
var SortableFields = []querydsl.Field{
	FieldID, FieldUsername, FieldFirstName, FieldLastName, FieldBirthDate, FieldRole,
}

// IsSortable reports whether users can be ordered by f
func IsSortable(f querydsl.Field) bool {
	for _, s := range SortableFields {
		if s == f {
			return true
		}
	}
	return false
}

// FieldValue implements querydsl.Record. Absent optional values report ok=false.
func (u User) FieldValue(f querydsl.Field) (any, bool) {
	switch f {
	case FieldID:
		return u.ID, true
	case FieldUsername:
		return u.Username, true
	case FieldFirstName:
		return u.FirstName, true
	case FieldLastName:
		return u.LastName, true
	case FieldBirthDate:
		if u.BirthDate == nil {
			return nil, false
		}
		return *u.BirthDate, true
	case FieldRole:
		return string(u.Role), true
	case FieldCompanyID:
		if u.CompanyID == nil {
			return nil, false
		}
		return *u.CompanyID, true
	case FieldCompanyName:
		if u.Company == nil {
			return nil, false
		}
		return u.Company.Name, true
	default:
		return nil, false
	}
}
