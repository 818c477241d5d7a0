// Package repositories implements persistence for the network entities
// on top of gorm. Every repository works on the *gorm.DB it was built
// with, normally the transaction of the current unit of work.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"regiond/internal/errs"
	"regiond/internal/filters"
	"regiond/internal/models"
)

// Repository is the generic CRUD implementation shared by all entities.
type Repository[T models.Model] struct {
	db    *gorm.DB
	table string
}

func NewRepository[T models.Model](db *gorm.DB) *Repository[T] {
	var zero T
	return &Repository[T]{db: db, table: zero.TableName()}
}

func (r *Repository[T]) Table() string { return r.table }

func (r *Repository[T]) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *Repository[T]) query(ctx context.Context, q filters.QuerySpec) *gorm.DB {
	var zero T
	return q.Apply(r.conn(ctx).Model(&zero), r.table)
}

func (r *Repository[T]) byID(id int) filters.QuerySpec {
	return filters.Query(filters.Where(r.table+".id = ?", id))
}

// GetByID returns nil when no row has that id.
func (r *Repository[T]) GetByID(ctx context.Context, id int) (*T, error) {
	return r.GetOne(ctx, r.byID(id))
}

// GetOne returns the lowest-id row matching q, or nil.
func (r *Repository[T]) GetOne(ctx context.Context, q filters.QuerySpec) (*T, error) {
	var m T
	err := r.query(ctx, q).Order(r.table + ".id").Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.table, err)
	}
	return &m, nil
}

func (r *Repository[T]) GetMany(ctx context.Context, q filters.QuerySpec) ([]T, error) {
	var out []T
	if err := r.query(ctx, q).Order(r.table + ".id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	return out, nil
}

func (r *Repository[T]) Exists(ctx context.Context, q filters.QuerySpec) (bool, error) {
	var n int64
	if err := r.query(ctx, q).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count %s: %w", r.table, err)
	}
	return n > 0, nil
}

// List returns one page ordered by descending id. token is the string form
// of the first id of the page ("" starts from the newest row); the id of
// the first row of the following page is returned as NextToken.
func (r *Repository[T]) List(ctx context.Context, token string, size int, q filters.QuerySpec) (models.ListResult[T], error) {
	if size < 1 {
		return models.ListResult[T]{}, errs.Validation("page size must be positive, got %d", size)
	}
	tx := r.query(ctx, q)
	if token != "" {
		id, err := strconv.Atoi(token)
		if err != nil {
			return models.ListResult[T]{}, errs.Validation("invalid page token %q", token)
		}
		tx = tx.Where(r.table+".id <= ?", id)
	}

	var rows []T
	// one extra row tells whether another page exists
	if err := tx.Order(r.table + ".id DESC").Limit(size + 1).Find(&rows).Error; err != nil {
		return models.ListResult[T]{}, fmt.Errorf("list %s: %w", r.table, err)
	}
	res := models.ListResult[T]{Items: rows}
	if len(rows) > size {
		next := strconv.Itoa(rows[size].GetID())
		res.Items = rows[:size]
		res.NextToken = &next
	}
	if res.Items == nil {
		res.Items = []T{}
	}
	return res, nil
}

func (r *Repository[T]) Create(ctx context.Context, res Resource) (*T, error) {
	var m T
	if err := res.populate(ctx, r.conn(ctx), &m); err != nil {
		return nil, err
	}
	if err := r.conn(ctx).Create(&m).Error; err != nil {
		return nil, translateError(r.table, err)
	}
	return &m, nil
}

// UpdateByID applies the columns set in res. A missing row is NotFound.
func (r *Repository[T]) UpdateByID(ctx context.Context, id int, res Resource) (*T, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NotFound("Resource with such identifiers does not exist.")
	}
	if len(res) == 0 {
		return existing, nil
	}
	target := *existing
	if err := r.conn(ctx).Model(&target).Updates(map[string]any(res)).Error; err != nil {
		return nil, translateError(r.table, err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repository[T]) UpdateOne(ctx context.Context, q filters.QuerySpec, res Resource) (*T, error) {
	existing, err := r.GetOne(ctx, q)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NotFound("Resource with such identifiers does not exist.")
	}
	return r.UpdateByID(ctx, (*existing).GetID(), res)
}

func (r *Repository[T]) UpdateMany(ctx context.Context, q filters.QuerySpec, res Resource) ([]T, error) {
	rows, err := r.GetMany(ctx, q)
	if err != nil || len(rows) == 0 || len(res) == 0 {
		return rows, err
	}
	ids := idsOf(rows)
	var zero T
	if err := r.conn(ctx).Model(&zero).Where(r.table+".id IN ?", ids).Updates(map[string]any(res)).Error; err != nil {
		return nil, translateError(r.table, err)
	}
	return r.GetMany(ctx, filters.Query(filters.Where(r.table+".id IN ?", ids)))
}

// DeleteByID returns the deleted row, or nil when nothing matched.
func (r *Repository[T]) DeleteByID(ctx context.Context, id int) (*T, error) {
	return r.DeleteOne(ctx, r.byID(id))
}

func (r *Repository[T]) DeleteOne(ctx context.Context, q filters.QuerySpec) (*T, error) {
	m, err := r.GetOne(ctx, q)
	if err != nil || m == nil {
		return nil, err
	}
	tx := r.conn(ctx).Delete(m)
	if tx.Error != nil {
		return nil, translateError(r.table, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return m, nil
}

func (r *Repository[T]) DeleteMany(ctx context.Context, q filters.QuerySpec) ([]T, error) {
	rows, err := r.GetMany(ctx, q)
	if err != nil || len(rows) == 0 {
		return rows, err
	}
	var zero T
	if err := r.conn(ctx).Where(r.table+".id IN ?", idsOf(rows)).Delete(&zero).Error; err != nil {
		return nil, translateError(r.table, err)
	}
	return rows, nil
}

func idsOf[T models.Model](rows []T) []int {
	ids := make([]int, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.GetID())
	}
	return ids
}

// translateError turns unique violations into Conflict errors.
func translateError(table string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return errs.Conflict("A %s resource with such identifiers already exists.", strings.TrimSuffix(table, "s"))
	}
	return fmt.Errorf("%s: %w", table, err)
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "Duplicate entry") // mysql
}

// Resource is a partial set of column values for a create or update.
type Resource map[string]any

// populate copies the values of res into the matching fields of dest.
func (res Resource) populate(ctx context.Context, db *gorm.DB, dest any) error {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(dest); err != nil {
		return err
	}
	rv := reflect.ValueOf(dest).Elem()
	for col, v := range res {
		field := stmt.Schema.LookUpField(col)
		if field == nil {
			return fmt.Errorf("%s has no column %q", stmt.Schema.Table, col)
		}
		if err := field.Set(ctx, rv, v); err != nil {
			return fmt.Errorf("set %s.%s: %w", stmt.Schema.Table, col, err)
		}
	}
	return nil
}
