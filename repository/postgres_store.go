package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-blog-api/logger"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// PostgresStore implements IStore for any record described by a Resource.
type PostgresStore[T any] struct {
	DB  *sqlx.DB
	res Resource[T]
}

func NewPostgresStore[T any](db *sqlx.DB, res Resource[T]) *PostgresStore[T] {
	return &PostgresStore[T]{DB: db, res: res}
}

func (s *PostgresStore[T]) log() *logrus.Entry {
	return logger.Log.WithField("resource", s.res.Name)
}

func (s *PostgresStore[T]) selectClause() string {
	return "SELECT " + strings.Join(s.res.Columns, ", ") + " FROM " + s.res.Collection
}

func (s *PostgresStore[T]) Create(ctx context.Context, item *T) error {
	if key := s.res.Key(item); *key == "" {
		*key = ulid.Make().String()
	}
	s.res.Stamp(item, time.Now().UTC(), true)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
		s.res.Collection,
		strings.Join(s.res.Columns, ", "),
		strings.Join(s.res.Columns, ", :"))
	if _, err := s.DB.NamedExecContext(ctx, query, item); err != nil {
		s.log().WithError(err).Error("Failed to execute insert query")
		return fmt.Errorf("create %s: %w", s.res.Name, err)
	}
	return nil
}

func (s *PostgresStore[T]) GetAll(ctx context.Context) ([]*T, error) {
	items := []*T{}
	query := s.selectClause() + " ORDER BY created_at DESC"
	if err := s.DB.SelectContext(ctx, &items, query); err != nil {
		s.log().WithError(err).Error("Failed to execute list query")
		return nil, fmt.Errorf("list %s: %w", s.res.Collection, err)
	}
	return items, nil
}

func (s *PostgresStore[T]) GetByID(ctx context.Context, id string) (*T, error) {
	item := new(T)
	if err := s.DB.GetContext(ctx, item, s.selectClause()+" WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.log().WithError(err).WithField("id", id).Error("Failed to execute get query")
		return nil, fmt.Errorf("get %s: %w", s.res.Name, err)
	}
	return item, nil
}

func (s *PostgresStore[T]) FindBy(ctx context.Context, field, value string) ([]*T, error) {
	if !s.res.filterable(field) {
		return nil, fmt.Errorf("%s cannot be filtered by %q", s.res.Name, field)
	}
	items := []*T{}
	query := s.selectClause() + " WHERE " + field + " = $1 ORDER BY created_at DESC"
	if err := s.DB.SelectContext(ctx, &items, query, value); err != nil {
		s.log().WithError(err).WithField(field, value).Error("Failed to execute find query")
		return nil, fmt.Errorf("find %s by %s: %w", s.res.Collection, field, err)
	}
	return items, nil
}

// Update rewrites the mutable columns of an existing record.
func (s *PostgresStore[T]) Update(ctx context.Context, item *T) error {
	s.res.Stamp(item, time.Now().UTC(), false)

	sets := make([]string, len(s.res.Mutable))
	for i, col := range s.res.Mutable {
		sets[i] = col + " = :" + col
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", s.res.Collection, strings.Join(sets, ", "))
	res, err := s.DB.NamedExecContext(ctx, query, item)
	if err != nil {
		s.log().WithError(err).Error("Failed to execute update query")
		return fmt.Errorf("update %s: %w", s.res.Name, err)
	}
	return expectOneRow(res, ErrNotFound)
}

func (s *PostgresStore[T]) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM "+s.res.Collection+" WHERE id = $1", id)
	if err != nil {
		s.log().WithError(err).WithField("id", id).Error("Failed to execute delete query")
		return fmt.Errorf("delete %s: %w", s.res.Name, err)
	}
	return expectOneRow(res, ErrNotFound)
}

// DeleteBy removes every record whose field equals value.
func (s *PostgresStore[T]) DeleteBy(ctx context.Context, field, value string) (int64, error) {
	if !s.res.filterable(field) {
		return 0, fmt.Errorf("%s cannot be filtered by %q", s.res.Name, field)
	}
	res, err := s.DB.ExecContext(ctx, "DELETE FROM "+s.res.Collection+" WHERE "+field+" = $1", value)
	if err != nil {
		s.log().WithError(err).WithField(field, value).Error("Failed to execute bulk delete query")
		return 0, fmt.Errorf("delete %s by %s: %w", s.res.Collection, field, err)
	}
	return res.RowsAffected()
}
