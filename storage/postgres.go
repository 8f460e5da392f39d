package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/irsalhamdi/wholesale-storefront/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrations embed.FS

func OpenPostgres(cfg config.DB) (*sqlx.DB, error) {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}

	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: q.Encode(),
	}

	db, err := sqlx.Open("postgres", u.String())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	return db, nil
}

// Migrate brings the storage schema up to date.
func Migrate(db *sqlx.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	drv, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

type item struct {
	Name      string    `db:"name"`
	Scope     string    `db:"scope"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Postgres keeps items in the storage_items table, one row per name and scope.
type Postgres struct {
	db    *sqlx.DB
	scope ScopeFunc
}

func NewPostgres(db *sqlx.DB, scope ScopeFunc) *Postgres {
	return &Postgres{db: db, scope: scope}
}

func (p *Postgres) GetItem(ctx context.Context, name string) ([]byte, error) {
	scope, err := p.scope(ctx)
	if err != nil {
		return nil, err
	}

	const q = `
	SELECT value
	FROM storage_items
	WHERE name = $1 AND scope = $2`

	var value []byte
	if err := p.db.GetContext(ctx, &value, q, name, scope); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("selecting item %s[%s]: %w", name, scope, err)
	}
	return value, nil
}

func (p *Postgres) SetItem(ctx context.Context, name string, value []byte) error {
	scope, err := p.scope(ctx)
	if err != nil {
		return err
	}

	const q = `
	INSERT INTO storage_items (name, scope, value, updated_at)
	VALUES (:name, :scope, :value, :updated_at)
	ON CONFLICT (name, scope) DO UPDATE
	SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	it := item{Name: name, Scope: scope, Value: value, UpdatedAt: time.Now().UTC()}
	if _, err := p.db.NamedExecContext(ctx, q, it); err != nil {
		return fmt.Errorf("upserting item %s[%s]: %w", name, scope, err)
	}
	return nil
}

func (p *Postgres) RemoveItem(ctx context.Context, name string) error {
	scope, err := p.scope(ctx)
	if err != nil {
		return err
	}

	const q = `
	DELETE FROM storage_items
	WHERE name = $1 AND scope = $2`

	if _, err := p.db.ExecContext(ctx, q, name, scope); err != nil {
		return fmt.Errorf("deleting item %s[%s]: %w", name, scope, err)
	}
	return nil
}
