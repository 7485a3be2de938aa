package sqlrepo

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-calendar-gateway/internal/errors"
	"github.com/jrsteele09/go-calendar-gateway/users"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// UserRepo stores users in a relational database, SQLite or Postgres.
type UserRepo struct {
	db     *sql.DB
	driver string
}

var _ users.UserRepo = (*UserRepo)(nil)

// DriverFor picks the database/sql driver for a DSN: postgres:// and postgresql:// URLs
// use lib/pq, everything else is treated as a SQLite file or URI.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Open connects to the database named by dsn and checks it is reachable.
func Open(ctx context.Context, dsn string) (*UserRepo, error) {
	driver := DriverFor(dsn)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("[sqlrepo Open] %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection keeps :memory: databases alive and serialises writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("[sqlrepo Open] ping %s: %w", driver, err)
	}
	return New(db, driver), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, driver string) *UserRepo {
	return &UserRepo{db: db, driver: driver}
}

func (r *UserRepo) Close() error {
	return r.db.Close()
}

func (r *UserRepo) List(ctx context.Context) ([]*users.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, age FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("[sqlrepo List] %w", err)
	}
	defer rows.Close()

	userList := make([]*users.User, 0)
	for rows.Next() {
		u := &users.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Age); err != nil {
			return nil, fmt.Errorf("[sqlrepo List] scan: %w", err)
		}
		userList = append(userList, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[sqlrepo List] %w", err)
	}
	return userList, nil
}

func (r *UserRepo) Create(ctx context.Context, fields users.Fields) (*users.User, error) {
	query := r.bind(`INSERT INTO users (name, email, age) VALUES (?, ?, ?) RETURNING id, name, email, age`)

	u := &users.User{}
	err := r.db.QueryRowContext(ctx, query, fields.Name, fields.Email, fields.Age).
		Scan(&u.ID, &u.Name, &u.Email, &u.Age)
	if err != nil {
		return nil, fmt.Errorf("[sqlrepo Create] %w", err)
	}
	return u, nil
}

func (r *UserRepo) Update(ctx context.Context, id int64, fields users.Fields) (*users.User, error) {
	query := r.bind(`UPDATE users SET name = ?, email = ?, age = ? WHERE id = ? RETURNING id, name, email, age`)

	u := &users.User{}
	err := r.db.QueryRowContext(ctx, query, fields.Name, fields.Email, fields.Age, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Age)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "[sqlrepo Update] user %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("[sqlrepo Update] %w", err)
	}
	return u, nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.bind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("[sqlrepo Delete] %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("[sqlrepo Delete] %w", err)
	}
	if affected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "[sqlrepo Delete] user %d", id)
	}
	return nil
}

// bind rewrites ? placeholders into $n for Postgres.
func (r *UserRepo) bind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
