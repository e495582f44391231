// Package database provides the PostgreSQL storage layer of the goUserFilter service.
package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// DefaultOperationTimeout bounds single-row operations (lookups and writes).
// Filtered queries are bounded by the query executor instead.
const DefaultOperationTimeout = 5 * time.Second

// UserColumns maps user fields to the columns of the users/companies join
var UserColumns = querydsl.ColumnMap{
	models.FieldID:          "u.id",
	models.FieldUsername:    "u.username",
	models.FieldFirstName:   "u.firstname",
	models.FieldLastName:    "u.lastname",
	models.FieldBirthDate:   "u.birth_date",
	models.FieldRole:        "u.role",
	models.FieldCompanyID:   "u.company_id",
	models.FieldCompanyName: "c.name",
}

const (
	userFrom   = `FROM users u LEFT JOIN companies c ON c.id = u.company_id`
	userSelect = `SELECT u.id, u.username, u.firstname, u.lastname, u.birth_date, u.role, u.company_id, c.name ` + userFrom
)

// UserStore runs user queries on a pgx pool
type UserStore struct {
	pool   *pgxpool.Pool
	logger *logging.Logger
}

// NewUserStore returns a store over pool
func NewUserStore(pool *pgxpool.Pool, logger *logging.Logger) *UserStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &UserStore{pool: pool, logger: logger}
}

// Find returns the users matching p within window w
func (s *UserStore) Find(ctx context.Context, p querydsl.Predicate, w querydsl.Window) ([]models.User, error) {
	query, args, err := BuildFindQuery(p, w)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, max(w.Limit, 0))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	s.logPerformanceMetrics("FindUsers", time.Since(start))
	return users, nil
}

// Count returns the number of users matching p
func (s *UserStore) Count(ctx context.Context, p querydsl.Predicate) (int64, error) {
	query, args, err := BuildCountQuery(p)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	var total int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	s.logPerformanceMetrics("CountUsers", time.Since(start))
	return total, nil
}

// FindByID returns the user with id, or ErrUserNotFound
func (s *UserStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	start := time.Now()
	user, err := scanUser(s.pool.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, apperrors.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}

	s.logPerformanceMetrics("GetUserByID", time.Since(start))
	return user, nil
}

// Create inserts u and returns it with its generated id and company
func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	start := time.Now()
	query := `INSERT INTO users (username, firstname, lastname, birth_date, role, company_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int64
	err := s.pool.QueryRow(ctx, query, u.Username, u.FirstName, u.LastName, u.BirthDate, string(u.Role), u.CompanyID).Scan(&id)
	if err != nil {
		return models.User{}, classifyError("create user", err)
	}

	s.logPerformanceMetrics("CreateUser", time.Since(start))
	return s.FindByID(ctx, id)
}

// Update overwrites the user with u.ID
func (s *UserStore) Update(ctx context.Context, u models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	start := time.Now()
	query := `UPDATE users SET username = $1, firstname = $2, lastname = $3, birth_date = $4, role = $5, company_id = $6
		WHERE id = $7`

	tag, err := s.pool.Exec(ctx, query, u.Username, u.FirstName, u.LastName, u.BirthDate, string(u.Role), u.CompanyID, u.ID)
	if err != nil {
		return models.User{}, classifyError(fmt.Sprintf("update user %d", u.ID), err)
	}
	if tag.RowsAffected() == 0 {
		return models.User{}, apperrors.ErrUserNotFound
	}

	s.logPerformanceMetrics("UpdateUser", time.Since(start))
	return s.FindByID(ctx, u.ID)
}

// Delete removes the user with id
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// CreateCompany inserts a company
func (s *UserStore) CreateCompany(ctx context.Context, name string) (models.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	c := models.Company{Name: name}
	if err := s.pool.QueryRow(ctx, `INSERT INTO companies (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID); err != nil {
		return models.Company{}, classifyError("create company", err)
	}
	return c, nil
}

// CopyUsers bulk-loads users with the COPY protocol. IDs on the input are ignored.
func (s *UserStore) CopyUsers(ctx context.Context, users []models.User) (int64, error) {
	columns := []string{"username", "firstname", "lastname", "birth_date", "role", "company_id"}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"users"}, columns,
		pgx.CopyFromSlice(len(users), func(i int) ([]any, error) {
			u := users[i]
			return []any{u.Username, u.FirstName, u.LastName, u.BirthDate, string(u.Role), u.CompanyID}, nil
		}),
	)
	if err != nil {
		return 0, classifyError("copy users", err)
	}
	return n, nil
}

// Ping checks connectivity
func (s *UserStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// BuildFindQuery renders the SELECT for p and w with $n parameters
func BuildFindQuery(p querydsl.Predicate, w querydsl.Window) (string, []any, error) {
	where, args, err := querydsl.Where(p, UserColumns, querydsl.Postgres, 0)
	if err != nil {
		return "", nil, err
	}
	orderBy, err := querydsl.OrderBy(w.Sort, UserColumns)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString(userSelect)
	sb.WriteString(" WHERE ")
	sb.WriteString(where)
	if orderBy != "" {
		sb.WriteString(" ")
		sb.WriteString(orderBy)
	}
	if w.Limit > 0 {
		args = append(args, w.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if w.Offset > 0 {
		args = append(args, w.Offset)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	return sb.String(), args, nil
}

// BuildCountQuery renders the COUNT for p with $n parameters
func BuildCountQuery(p querydsl.Predicate) (string, []any, error) {
	where, args, err := querydsl.Where(p, UserColumns, querydsl.Postgres, 0)
	if err != nil {
		return "", nil, err
	}
	return `SELECT COUNT(*) ` + userFrom + ` WHERE ` + where, args, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		u           models.User
		role        string
		companyName *string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.BirthDate, &role, &u.CompanyID, &companyName); err != nil {
		return models.User{}, err
	}
	u.Role = models.Role(role)
	if u.CompanyID != nil && companyName != nil {
		u.Company = &models.Company{ID: *u.CompanyID, Name: *companyName}
	}
	return u, nil
}

// logPerformanceMetrics logs operation latency against the slow query thresholds
func (s *UserStore) logPerformanceMetrics(operation string, duration time.Duration) {
	s.logger.Query(operation, duration, logging.FieldComponent, "database")
}
