// Package service holds the user use cases of goUserFilter: filtered and
// paginated queries shaped into DTO pages, and the CRUD operations behind
// them.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/query"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
	"github.com/chybatronik/goUserFilter/internal/types"
	"github.com/chybatronik/goUserFilter/internal/validation"
	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// UserWriter is the single-record side of a user store
type UserWriter interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

// UserStore is implemented by the PostgreSQL, SQLite and in-memory stores
type UserStore interface {
	query.Source[models.User]
	UserWriter
}

// UserService runs user queries and writes. It is safe for concurrent use.
type UserService struct {
	store    UserStore
	executor *query.Executor[models.User]
	validate *validator.Validate
	logger   *logging.Logger
	now      func() time.Time
}

// NewUserService wires store into an executor that sorts on the user sort
// fields with id as tiebreaker. opts are applied after those defaults.
func NewUserService(store UserStore, logger *logging.Logger, opts ...query.Option) *UserService {
	if logger == nil {
		logger = logging.Discard()
	}

	execOpts := append([]query.Option{
		query.WithTiebreaker(models.FieldID),
		query.WithSortable(models.SortableFields...),
		query.WithLogger(logger),
	}, opts...)

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &UserService{
		store:    store,
		executor: query.NewExecutor[models.User](store, execOpts...),
		validate: v,
		logger:   logger.WithComponent("user_service"),
		now:      time.Now,
	}
}

// MaxPageSize returns the largest accepted page size, 0 when unbounded
func (s *UserService) MaxPageSize() int {
	return s.executor.MaxPageSize()
}

// QueryPage returns one page of users matching filter, shaped for the wire
func (s *UserService) QueryPage(ctx context.Context, filter types.UserFilter, req types.PageRequest) (types.PageResponse[models.UserReadDTO], error) {
	page, err := s.executor.FindPage(ctx, filter.Predicate(), req)
	if err != nil {
		return types.PageResponse[models.UserReadDTO]{}, err
	}

	resp, err := types.NewPageResponse(page, MapUser)
	if err != nil {
		s.logger.Error("failed to shape user page", logging.FieldError, err, logging.FieldPage, req.Page)
		return types.PageResponse[models.UserReadDTO]{}, err
	}
	return resp, nil
}

// QueryAll returns every user matching filter in id order
func (s *UserService) QueryAll(ctx context.Context, filter types.UserFilter) ([]models.UserReadDTO, error) {
	if filter.IsEmpty() {
		s.logger.Info("unfiltered user report requested")
	}

	users, err := s.executor.FindAll(ctx, filter.Predicate(), nil)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserReadDTO, 0, len(users))
	for i, u := range users {
		dto, err := MapUser(u)
		if err != nil {
			err = apperrors.MappingFailure(i, err)
			s.logger.Error("failed to shape user report", logging.FieldError, err)
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

// FindPersonalInfo lists the members of a company, optionally narrowed to one role
func (s *UserService) FindPersonalInfo(ctx context.Context, companyID int64, role models.Role) ([]models.PersonalInfo, error) {
	if companyID <= 0 {
		return nil, apperrors.NewUserValidationError(apperrors.ErrCodeIDInvalid, "Company ID must be a positive integer")
	}
	if role != "" && !role.Valid() {
		return nil, apperrors.MapValidationError("role", "oneof")
	}

	b := querydsl.NewBuilder()
	querydsl.Add(b, &companyID, querydsl.Equal[int64](models.FieldCompanyID))
	querydsl.Add(b, &role, func(r models.Role) querydsl.Condition {
		return querydsl.Equal[string](models.FieldRole)(string(r))
	})

	users, err := s.executor.FindAll(ctx, b.Build(), []querydsl.Order{
		querydsl.Asc(models.FieldLastName),
		querydsl.Asc(models.FieldFirstName),
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.PersonalInfo, 0, len(users))
	for _, u := range users {
		out = append(out, MapPersonalInfo(u))
	}
	return out, nil
}

// FindByID returns one user
func (s *UserService) FindByID(ctx context.Context, id int64) (models.UserReadDTO, error) {
	if id <= 0 {
		return models.UserReadDTO{}, apperrors.NewUserValidationError(apperrors.ErrCodeIDInvalid, "User ID must be a positive integer")
	}

	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.UserReadDTO{}, s.storeError(id, err)
	}
	return MapUser(u)
}

// Create validates dto and stores a new user
func (s *UserService) Create(ctx context.Context, dto models.UserCreateEditDTO) (models.UserReadDTO, error) {
	u, err := s.toUser(dto)
	if err != nil {
		return models.UserReadDTO{}, err
	}

	created, err := s.store.Create(ctx, u)
	if err != nil {
		return models.UserReadDTO{}, s.storeError(0, err)
	}

	s.logger.Info("user created", "user_id", created.ID)
	return MapUser(created)
}

// Update validates dto and overwrites the user with id
func (s *UserService) Update(ctx context.Context, id int64, dto models.UserCreateEditDTO) (models.UserReadDTO, error) {
	if id <= 0 {
		return models.UserReadDTO{}, apperrors.NewUserValidationError(apperrors.ErrCodeIDInvalid, "User ID must be a positive integer")
	}

	u, err := s.toUser(dto)
	if err != nil {
		return models.UserReadDTO{}, err
	}
	u.ID = id

	updated, err := s.store.Update(ctx, u)
	if err != nil {
		return models.UserReadDTO{}, s.storeError(id, err)
	}

	s.logger.Info("user updated", "user_id", id)
	return MapUser(updated)
}

// Delete removes the user with id
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.NewUserValidationError(apperrors.ErrCodeIDInvalid, "User ID must be a positive integer")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError(id, err)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// toUser validates dto and converts it to a record. A blank role means USER.
func (s *UserService) toUser(dto models.UserCreateEditDTO) (models.User, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)

	if err := s.validate.Struct(dto); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return models.User{}, apperrors.MapValidationError(verrs[0].Field(), verrs[0].Tag())
		}
		return models.User{}, apperrors.NewUserValidationError(apperrors.ErrCodeValidationFailed, "Request failed validation")
	}

	inputs := []validation.InputField{
		{Name: "username", Value: dto.Username, MaxLen: 64},
		{Name: "firstName", Value: dto.FirstName, MaxLen: 100},
		{Name: "lastName", Value: dto.LastName, MaxLen: 100},
	}
	if errs := validation.ValidateInputBatch(inputs); len(errs) > 0 {
		s.logger.Warn("unicode security validation failed", logging.FieldError, errs[0])
		return models.User{}, apperrors.NewUserValidationError("UNICODE_SECURITY_VIOLATION", "Invalid characters in user attributes")
	}

	birth := dto.BirthDate.TimePtr()
	if birth != nil && !birth.Before(s.now()) {
		return models.User{}, apperrors.MapValidationError("birthDate", "past")
	}

	role := dto.Role
	if role == "" {
		role = models.RoleUser
	}

	return models.User{
		Username:  dto.Username,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		BirthDate: birth,
		Role:      role,
		CompanyID: dto.CompanyID,
	}, nil
}

// storeError turns store sentinels into caller-facing errors
func (s *UserService) storeError(id int64, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return apperrors.NewUserNotFoundError(id)
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return apperrors.NewUserConflictError(apperrors.ErrCodeUserAlreadyExists, "Username is already taken")
	case errors.Is(err, apperrors.ErrCompanyNotFound):
		return apperrors.NewUserValidationError(apperrors.ErrCodeCompanyNotFound, "Company does not exist")
	case apperrors.IsUserError(err):
		return err
	}

	s.logger.Error("user store operation failed", logging.FieldError, err)
	return fmt.Errorf("user store: %w", err)
}

// MapUser projects a stored user onto its wire DTO. A record without id or
// username cannot be projected.
func MapUser(u models.User) (models.UserReadDTO, error) {
	if u.ID == 0 {
		return models.UserReadDTO{}, fmt.Errorf("%w: user has no id", apperrors.ErrMappingFailure)
	}
	if strings.TrimSpace(u.Username) == "" {
		return models.UserReadDTO{}, fmt.Errorf("%w: user %d has no username", apperrors.ErrMappingFailure, u.ID)
	}

	dto := models.UserReadDTO{
		ID:        u.ID,
		Username:  u.Username,
		BirthDate: models.DatePtr(u.BirthDate),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
	if u.Company != nil {
		dto.Company = &models.CompanyReadDTO{ID: u.Company.ID, Name: u.Company.Name}
	}
	return dto, nil
}

// MapPersonalInfo projects a stored user onto the roster view
func MapPersonalInfo(u models.User) models.PersonalInfo {
	return models.PersonalInfo{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		BirthDate: models.DatePtr(u.BirthDate),
	}
}
