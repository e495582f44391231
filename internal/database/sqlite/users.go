package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chybatronik/goUserFilter/internal/database"
	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
	"github.com/chybatronik/goUserFilter/internal/types"
	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// Dialect binds dates as ISO text, the storage format of birth_date
var Dialect = querydsl.Dialect{
	Placeholder: querydsl.QuestionMark.Placeholder,
	Bind: func(v any) any {
		if t, ok := v.(time.Time); ok {
			return t.Format(models.DateLayout)
		}
		return v
	},
	Lower: lowerFunc,
}

const (
	userFrom   = `FROM users u LEFT JOIN companies c ON c.id = u.company_id`
	userSelect = `SELECT u.id, u.username, u.firstname, u.lastname, u.birth_date, u.role, u.company_id, c.name ` + userFrom
)

// UserStore runs user queries on a SQLite database
type UserStore struct {
	db *sql.DB
}

// NewUserStore returns a store over db. The schema must already be applied, see Open.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Find returns the users matching p within window w
func (s *UserStore) Find(ctx context.Context, p querydsl.Predicate, w querydsl.Window) ([]models.User, error) {
	query, args, err := BuildFindQuery(p, w)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	return users, rows.Err()
}

// Count returns the number of users matching p
func (s *UserStore) Count(ctx context.Context, p querydsl.Predicate) (int64, error) {
	where, args, err := querydsl.Where(p, database.UserColumns, Dialect, 0)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) `+userFrom+` WHERE `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

// FindByID returns the user with id, or ErrUserNotFound
func (s *UserStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultOperationTimeout)
	defer cancel()

	user, err := scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE u.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperrors.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return user, nil
}

// Create inserts u and returns it with its generated id and company
func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultOperationTimeout)
	defer cancel()

	const stmt = `INSERT INTO users (username, firstname, lastname, birth_date, role, company_id)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, stmt, userArgs(u)...)
	if err != nil {
		return models.User{}, classifyError("create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to read user id: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update overwrites the user with u.ID
func (s *UserStore) Update(ctx context.Context, u models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultOperationTimeout)
	defer cancel()

	const stmt = `UPDATE users SET username = ?, firstname = ?, lastname = ?, birth_date = ?, role = ?, company_id = ?
		WHERE id = ?`

	res, err := s.db.ExecContext(ctx, stmt, append(userArgs(u), u.ID)...)
	if err != nil {
		return models.User{}, classifyError(fmt.Sprintf("update user %d", u.ID), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return s.FindByID(ctx, u.ID)
}

// Delete removes the user with id
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultOperationTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// CreateCompany inserts a company
func (s *UserStore) CreateCompany(ctx context.Context, name string) (models.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultOperationTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `INSERT INTO companies (name) VALUES (?)`, name)
	if err != nil {
		return models.Company{}, classifyError("create company", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Company{}, fmt.Errorf("failed to read company id: %w", err)
	}
	return models.Company{ID: id, Name: name}, nil
}

// Ping checks connectivity
func (s *UserStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Name implements types.HealthChecker
func (s *UserStore) Name() string {
	return "database"
}

// CheckHealth pings the database and attaches its connection counts
func (s *UserStore) CheckHealth(ctx context.Context) types.HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, database.HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := s.db.PingContext(ctx)
	stats := s.db.Stats()

	check := types.HealthCheck{
		Status:         types.StatusHealthy,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Details: map[string]string{
			"driver":           "sqlite",
			"open_connections": strconv.Itoa(stats.OpenConnections),
			"in_use":           strconv.Itoa(stats.InUse),
			"idle":             strconv.Itoa(stats.Idle),
		},
	}
	if err != nil {
		check.Status = types.StatusUnhealthy
		check.Error = fmt.Sprintf("database connection failed: %v", err)
	}
	return check
}

// BuildFindQuery renders the SELECT for p and w with ? parameters
func BuildFindQuery(p querydsl.Predicate, w querydsl.Window) (string, []any, error) {
	where, args, err := querydsl.Where(p, database.UserColumns, Dialect, 0)
	if err != nil {
		return "", nil, err
	}
	orderBy, err := querydsl.OrderBy(w.Sort, database.UserColumns)
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

	// SQLite only accepts OFFSET after a LIMIT; -1 is unbounded
	switch {
	case w.Limit > 0:
		sb.WriteString(" LIMIT ?")
		args = append(args, w.Limit)
	case w.Offset > 0:
		sb.WriteString(" LIMIT -1")
	}
	if w.Offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, w.Offset)
	}

	return sb.String(), args, nil
}

func userArgs(u models.User) []any {
	var birth any
	if u.BirthDate != nil {
		birth = u.BirthDate.Format(models.DateLayout)
	}
	var company any
	if u.CompanyID != nil {
		company = *u.CompanyID
	}
	return []any{u.Username, u.FirstName, u.LastName, birth, string(u.Role), company}
}

type userScanner interface {
	Scan(dest ...any) error
}

func scanUser(row userScanner) (models.User, error) {
	var (
		u           models.User
		role        string
		birth       sql.NullString
		companyID   sql.NullInt64
		companyName sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &birth, &role, &companyID, &companyName); err != nil {
		return models.User{}, err
	}

	u.Role = models.Role(role)
	if birth.Valid {
		t, err := time.Parse(models.DateLayout, birth.String)
		if err != nil {
			return models.User{}, fmt.Errorf("invalid birth_date %q: %w", birth.String, err)
		}
		u.BirthDate = &t
	}
	if companyID.Valid {
		id := companyID.Int64
		u.CompanyID = &id
		if companyName.Valid {
			u.Company = &models.Company{ID: id, Name: companyName.String}
		}
	}
	return u, nil
}
