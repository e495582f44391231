package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
	"github.com/chybatronik/goUserFilter/internal/types"
)

func ptr[T any](v T) *T { return &v }

func TestBuildFindQuery(t *testing.T) {
	cutoff := time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)
	p := types.UserFilter{FirstName: ptr("Ov"), BirthDate: &cutoff}.Predicate()
	w := querydsl.Window{
		Sort:   querydsl.WithTiebreaker([]querydsl.Order{querydsl.Desc(models.FieldLastName)}, models.FieldID),
		Limit:  20,
		Offset: 40,
	}

	query, args, err := BuildFindQuery(p, w)
	require.NoError(t, err)

	assert.Equal(t, userSelect+
		` WHERE LOWER(u.firstname) LIKE $1 ESCAPE '\' AND u.birth_date < $2`+
		` ORDER BY u.lastname DESC NULLS FIRST, u.id ASC NULLS LAST LIMIT $3 OFFSET $4`, query)
	assert.Equal(t, []any{"%ov%", cutoff, 20, 40}, args)
}

func TestBuildFindQuery_Unbounded(t *testing.T) {
	query, args, err := BuildFindQuery(querydsl.All(), querydsl.Window{})
	require.NoError(t, err)

	assert.Equal(t, userSelect+` WHERE 1 = 1`, query)
	assert.Empty(t, args)
}

func TestBuildFindQuery_UnknownSortField(t *testing.T) {
	_, _, err := BuildFindQuery(querydsl.All(), querydsl.Window{Sort: []querydsl.Order{querydsl.Asc("password")}})
	assert.Error(t, err)
}

func TestBuildCountQuery(t *testing.T) {
	p := types.UserFilter{CompanyID: ptr(int64(3)), Role: ptr(models.RoleAdmin)}.Predicate()

	query, args, err := BuildCountQuery(p)
	require.NoError(t, err)

	assert.Equal(t, `SELECT COUNT(*) `+userFrom+` WHERE u.company_id = $1 AND u.role = $2`, query)
	assert.Equal(t, []any{int64(3), "ADMIN"}, args)
}

func TestBuildQueries_KeepInputOutOfSQL(t *testing.T) {
	attacks := []string{
		"'; DROP TABLE users; --",
		"' OR '1'='1",
		"1 UNION SELECT password FROM admins",
	}

	for _, attack := range attacks {
		t.Run(attack, func(t *testing.T) {
			p := types.UserFilter{LastName: ptr(attack)}.Predicate()

			query, args, err := BuildFindQuery(p, querydsl.Window{Limit: 10})
			require.NoError(t, err)
			assert.NotContains(t, query, attack)
			assert.Len(t, args, 2)

			count, countArgs, err := BuildCountQuery(p)
			require.NoError(t, err)
			assert.NotContains(t, count, attack)
			assert.Len(t, countArgs, 1)
		})
	}
}
