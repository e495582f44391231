// Package models defines the domain entities and DTOs of the goUserFilter service.
package models

import (
	"time"
)

// DateLayout is the wire and storage layout for calendar dates
const DateLayout = "2006-01-02"

// Role is the authority granted to a user
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Company is the employer a user may belong to
type Company struct {
	ID   int64
	Name string
}

// User is the stored user record
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	BirthDate *time.Time // nil when unknown
	Role      Role
	CompanyID *int64
	Company   *Company // populated by stores that join companies
}

// UserReadDTO is the wire projection of a User
type UserReadDTO struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	BirthDate *Date           `json:"birthDate"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Role      Role            `json:"role"`
	Company   *CompanyReadDTO `json:"company"`
}

// CompanyReadDTO is the wire projection of a Company
type CompanyReadDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserCreateEditDTO carries the writable user attributes
type UserCreateEditDTO struct {
	Username  string `json:"username" validate:"required,max=64"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	BirthDate *Date  `json:"birthDate"`
	Role      Role   `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	CompanyID *int64 `json:"companyId" validate:"omitempty,gt=0"`
}

// PersonalInfo is the reduced projection returned by company rosters
type PersonalInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate *Date  `json:"birthDate"`
}
