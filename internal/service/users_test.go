package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUserFilter/internal/database/memory"
	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/query"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
	"github.com/chybatronik/goUserFilter/internal/types"
	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

func ptr[T any](v T) *T { return &v }

func date(y int) *models.Date {
	d := models.NewDate(time.Date(y, 6, 15, 0, 0, 0, 0, time.UTC))
	return &d
}

func newService(t *testing.T) (*UserService, *memory.UserStore, models.Company) {
	t.Helper()
	store := memory.NewUserStore()
	ctx := context.Background()

	acme, err := store.CreateCompany(ctx, "Acme")
	require.NoError(t, err)

	svc := NewUserService(store, nil, query.WithMaxPageSize(100))
	for _, dto := range []models.UserCreateEditDTO{
		{Username: "ivan", FirstName: "Ivan", LastName: "Ivanov", BirthDate: date(1990), Role: models.RoleAdmin, CompanyID: &acme.ID},
		{Username: "petr", FirstName: "Petr", LastName: "Petrov", BirthDate: date(1985), CompanyID: &acme.ID},
		{Username: "sveta", FirstName: "Sveta", LastName: "Svetikova", BirthDate: date(1995)},
		{Username: "anna", FirstName: "Anna", LastName: "Smith", BirthDate: date(2000), CompanyID: &acme.ID},
		{Username: "kate", FirstName: "Kate", LastName: "Brown"},
	} {
		_, err := svc.Create(ctx, dto)
		require.NoError(t, err)
	}
	return svc, store, acme
}

func usernames(dtos []models.UserReadDTO) []string {
	out := make([]string, len(dtos))
	for i, d := range dtos {
		out[i] = d.Username
	}
	return out
}

func TestQueryPage_LastNameExample(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	filter := types.UserFilter{LastName: ptr("ov")}

	first, err := svc.QueryPage(ctx, filter, types.PageRequest{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"ivan", "petr"}, usernames(first.Content))
	assert.Equal(t, types.Metadata{Page: 0, Size: 2, TotalElements: 3}, first.Metadata)

	second, err := svc.QueryPage(ctx, filter, types.PageRequest{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"sveta"}, usernames(second.Content))
	assert.Equal(t, types.Metadata{Page: 1, Size: 2, TotalElements: 3}, second.Metadata)
}

func TestQueryPage_SortAndShape(t *testing.T) {
	svc, _, acme := newService(t)

	resp, err := svc.QueryPage(context.Background(), types.UserFilter{}, types.PageRequest{
		Size: 2,
		Sort: []querydsl.Order{querydsl.Desc(models.FieldBirthDate)},
	})
	require.NoError(t, err)
	require.Len(t, resp.Content, 2)

	assert.Equal(t, "kate", resp.Content[0].Username)
	assert.Nil(t, resp.Content[0].BirthDate)
	assert.Equal(t, "anna", resp.Content[1].Username)
	assert.Equal(t, "2000-06-15", resp.Content[1].BirthDate.String())
	require.NotNil(t, resp.Content[1].Company)
	assert.Equal(t, acme.ID, resp.Content[1].Company.ID)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"metadata":{"page":0,"size":2,"totalElements":5}`)
}

func TestQueryPage_EmptyPageIsArray(t *testing.T) {
	svc, _, _ := newService(t)

	resp, err := svc.QueryPage(context.Background(), types.UserFilter{FirstName: ptr("zzz")}, types.PageRequest{Size: 10})
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[],"metadata":{"page":0,"size":10,"totalElements":0}}`, string(body))
}

func TestQueryPage_InvalidRequest(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	for _, req := range []types.PageRequest{
		{Page: -1, Size: 10},
		{Page: 0, Size: 0},
		{Page: 0, Size: 1000},
		{Size: 10, Sort: []querydsl.Order{querydsl.Asc(models.FieldCompanyName)}},
	} {
		_, err := svc.QueryPage(ctx, types.UserFilter{}, req)
		assert.True(t, apperrors.IsInvalidPageRequest(err), "%+v", req)
	}
	assert.Equal(t, 100, svc.MaxPageSize())
}

func TestQueryAll(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	all, err := svc.QueryAll(ctx, types.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ivan", "petr", "sveta", "anna", "kate"}, usernames(all))

	matched, err := svc.QueryAll(ctx, types.UserFilter{FirstName: ptr("A")})
	require.NoError(t, err)
	assert.Equal(t, []string{"ivan", "sveta", "anna", "kate"}, usernames(matched))

	before, err := svc.QueryAll(ctx, types.UserFilter{BirthDate: ptr(time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.Equal(t, []string{"ivan", "petr"}, usernames(before))
}

// brokenStore returns records that cannot be projected
type brokenStore struct {
	*memory.UserStore
}

func (b brokenStore) Find(context.Context, querydsl.Predicate, querydsl.Window) ([]models.User, error) {
	return []models.User{{ID: 1, Username: "ok"}, {ID: 2}}, nil
}

func (b brokenStore) Count(context.Context, querydsl.Predicate) (int64, error) {
	return 2, nil
}

func TestQuery_MappingFailureYieldsNoPage(t *testing.T) {
	svc := NewUserService(brokenStore{memory.NewUserStore()}, nil)
	ctx := context.Background()

	page, err := svc.QueryPage(ctx, types.UserFilter{}, types.PageRequest{Size: 10})
	require.Error(t, err)
	assert.True(t, apperrors.IsMappingFailure(err))
	assert.Contains(t, err.Error(), "record 1")
	assert.Empty(t, page.Content)

	all, err := svc.QueryAll(ctx, types.UserFilter{})
	assert.True(t, apperrors.IsMappingFailure(err))
	assert.Nil(t, all)
}

func TestMapUser(t *testing.T) {
	born := time.Date(1990, 3, 4, 12, 30, 0, 0, time.UTC)

	dto, err := MapUser(models.User{
		ID:        7,
		Username:  "ivan",
		FirstName: "Ivan",
		BirthDate: &born,
		Role:      models.RoleAdmin,
		Company:   &models.Company{ID: 3, Name: "Acme"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), dto.ID)
	assert.Equal(t, "1990-03-04", dto.BirthDate.String())
	assert.Equal(t, &models.CompanyReadDTO{ID: 3, Name: "Acme"}, dto.Company)

	_, err = MapUser(models.User{Username: "noid"})
	assert.ErrorIs(t, err, apperrors.ErrMappingFailure)

	_, err = MapUser(models.User{ID: 9, Username: "  "})
	assert.ErrorIs(t, err, apperrors.ErrMappingFailure)
}

func TestFindPersonalInfo(t *testing.T) {
	svc, _, acme := newService(t)
	ctx := context.Background()

	members, err := svc.FindPersonalInfo(ctx, acme.ID, "")
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "Ivanov", members[0].LastName)
	assert.Equal(t, "Petrov", members[1].LastName)
	assert.Equal(t, "Smith", members[2].LastName)

	admins, err := svc.FindPersonalInfo(ctx, acme.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "Ivan", admins[0].FirstName)

	_, err = svc.FindPersonalInfo(ctx, 0, "")
	assert.True(t, apperrors.IsUserError(err))

	_, err = svc.FindPersonalInfo(ctx, acme.ID, models.Role("ROOT"))
	userErr, ok := apperrors.GetUserError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeRoleInvalid, userErr.Code)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		dto  models.UserCreateEditDTO
		code string
	}{
		{"missing username", models.UserCreateEditDTO{FirstName: "A"}, apperrors.ErrCodeUsernameEmpty},
		{"blank username", models.UserCreateEditDTO{Username: "   "}, apperrors.ErrCodeUsernameEmpty},
		{"unknown role", models.UserCreateEditDTO{Username: "x", Role: "ROOT"}, apperrors.ErrCodeRoleInvalid},
		{"future birth date", models.UserCreateEditDTO{Username: "x", BirthDate: date(time.Now().Year() + 1)}, apperrors.ErrCodeBirthDateInvalid},
		{"control characters", models.UserCreateEditDTO{Username: "x\x00y"}, "UNICODE_SECURITY_VIOLATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.dto)
			userErr, ok := apperrors.GetUserError(err)
			require.True(t, ok, "%v", err)
			assert.Equal(t, tt.code, userErr.Code)
			assert.Equal(t, http.StatusBadRequest, userErr.HTTPStatus)
		})
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	svc, store, acme := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.UserCreateEditDTO{Username: " olga ", FirstName: "Olga", CompanyID: &acme.ID})
	require.NoError(t, err)
	assert.Equal(t, "olga", created.Username)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.Equal(t, 6, store.Len())

	_, err = svc.Create(ctx, models.UserCreateEditDTO{Username: "OLGA"})
	userErr, ok := apperrors.GetUserError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, userErr.HTTPStatus)

	_, err = svc.Create(ctx, models.UserCreateEditDTO{Username: "nobody", CompanyID: ptr(int64(404))})
	userErr, ok = apperrors.GetUserError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeCompanyNotFound, userErr.Code)

	updated, err := svc.Update(ctx, created.ID, models.UserCreateEditDTO{Username: "olga", LastName: "Orlova", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Orlova", updated.LastName)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Nil(t, updated.Company)

	got, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.FindByID(ctx, created.ID)
	userErr, ok = apperrors.GetUserError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, userErr.HTTPStatus)

	err = svc.Delete(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, errStatus(err))

	_, err = svc.FindByID(ctx, -1)
	assert.Equal(t, http.StatusBadRequest, errStatus(err))
}

func errStatus(err error) int {
	var userErr *apperrors.UserError
	if errors.As(err, &userErr) {
		return userErr.HTTPStatus
	}
	return 0
}
