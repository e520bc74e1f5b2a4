package preset

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Scope string

const (
	// ScopeUser stores a preset choice for one user key.
	ScopeUser Scope = "user"
	// ScopeGlobal stores the machine-wide default choice.
	ScopeGlobal Scope = "global"
)

func (s Scope) String() string {
	return string(s)
}

var ErrNotFound = errors.New("preset ID not found")

// Repository persists which preset a scope key has selected. The schema is
// managed by goose migrations under migrations/.
type Repository interface {
	Find(ctx context.Context, scope Scope, key string) (PresetID, error)
	Save(ctx context.Context, scope Scope, key string, presetID PresetID) error
	Delete(ctx context.Context, scope Scope, key string) error
}

func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{db: db, dialect: dialectFor(db.DriverName())}
}

// dialect captures what differs between the supported databases: the
// placeholder format, the upsert syntax, and the quoting of the "key"
// column (a reserved word on MySQL).
type dialect struct {
	builder sq.StatementBuilderType
	keyCol  string
	upsert  string
}

func dialectFor(driverName string) dialect {
	switch driverName {
	case "postgres":
		return dialect{
			builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
			keyCol:  "key",
			upsert:  "ON CONFLICT (scope, key) DO UPDATE SET preset_id = excluded.preset_id, updated_at = CURRENT_TIMESTAMP",
		}
	case "mysql":
		return dialect{
			builder: sq.StatementBuilder,
			keyCol:  "`key`",
			upsert:  "ON DUPLICATE KEY UPDATE preset_id = VALUES(preset_id), updated_at = CURRENT_TIMESTAMP",
		}
	default: // sqlite
		return dialect{
			builder: sq.StatementBuilder,
			keyCol:  "key",
			upsert:  "ON CONFLICT (scope, key) DO UPDATE SET preset_id = excluded.preset_id, updated_at = CURRENT_TIMESTAMP",
		}
	}
}

func (d dialect) findQuery(scope Scope, key string) (string, []any, error) {
	return d.builder.
		Select("preset_id").
		From("scoped_presets").
		Where(sq.Eq{"scope": scope.String(), d.keyCol: key}).
		ToSql()
}

func (d dialect) saveQuery(scope Scope, key string, presetID PresetID) (string, []any, error) {
	return d.builder.
		Insert("scoped_presets").
		Columns("scope", d.keyCol, "preset_id").
		Values(scope.String(), key, string(presetID)).
		Suffix(d.upsert).
		ToSql()
}

func (d dialect) deleteQuery(scope Scope, key string) (string, []any, error) {
	return d.builder.
		Delete("scoped_presets").
		Where(sq.Eq{"scope": scope.String(), d.keyCol: key}).
		ToSql()
}

type repositoryImpl struct {
	db      *sqlx.DB
	dialect dialect
}

func (r *repositoryImpl) Find(ctx context.Context, scope Scope, key string) (PresetID, error) {
	query, args, err := r.dialect.findQuery(scope, key)
	if err != nil {
		return "", err
	}

	var presetID string
	if err := r.db.GetContext(ctx, &presetID, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return PresetID(presetID), nil
}

func (r *repositoryImpl) Save(ctx context.Context, scope Scope, key string, presetID PresetID) error {
	query, args, err := r.dialect.saveQuery(scope, key, presetID)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *repositoryImpl) Delete(ctx context.Context, scope Scope, key string) error {
	query, args, err := r.dialect.deleteQuery(scope, key)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// MockRepository is an empty store for wiring without a database.
type MockRepository struct{}

func (m *MockRepository) Find(ctx context.Context, scope Scope, key string) (PresetID, error) {
	return "", ErrNotFound
}

func (m *MockRepository) Save(ctx context.Context, scope Scope, key string, presetID PresetID) error {
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, scope Scope, key string) error {
	return nil
}
