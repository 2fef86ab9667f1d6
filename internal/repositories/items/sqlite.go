package items

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/dabidoe/character-foundry/internal/entities"
	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	"github.com/dabidoe/character-foundry/internal/repositories/items/migrations"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

const itemColumns = "data"

// SQLiteConfig configures the SQLite item store
type SQLiteConfig struct {
	// Path is a file path or MemoryPath
	Path  string
	Clock clock.Clock
}

// Validate validates the config
func (c *SQLiteConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Path", c.Path, vb)
	return vb.Build()
}

type sqliteRepository struct {
	db    *sql.DB
	clock clock.Clock
}

// NewSQLite opens the database and applies the embedded migrations
func NewSQLite(cfg *SQLiteConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dsn := MemoryPath
	if cfg.Path != MemoryPath {
		dsn = filepath.Clean(cfg.Path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database")
	}
	if cfg.Path == MemoryPath {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to ping sqlite database")
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &sqliteRepository{db: db, clock: c}, nil
}

func applyMigrations(db *sql.DB, migrationFS fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return errors.Wrapf(err, "failed to create migration table")
	}

	files, err := fs.Glob(migrationFS, "*.sql")
	if err != nil {
		return errors.Wrapf(err, "failed to read migrations")
	}
	sort.Strings(files)

	for _, name := range files {
		var applied int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, name).Scan(&applied); err != nil {
			return errors.Wrapf(err, "failed to check migration %s", name)
		}
		if applied > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration %s", name)
		}

		tx, err := db.Begin()
		if err != nil {
			return errors.Wrapf(err, "failed to begin migration %s", name)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "failed to apply migration %s", name)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`,
			name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "failed to record migration %s", name)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "failed to commit migration %s", name)
		}
		slog.Debug("applied item library migration", "name", name)
	}
	return nil
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

func (r *sqliteRepository) prepare(item *entities.Item) ([]byte, error) {
	if item == nil {
		return nil, errors.InvalidArgument("item cannot be nil")
	}
	if strings.TrimSpace(item.GUID) == "" {
		return nil, errors.InvalidArgument("item GUID cannot be empty")
	}
	if strings.TrimSpace(item.Name) == "" {
		return nil, errors.InvalidArgument("item name cannot be empty")
	}
	if item.ID == "" {
		item.ID = item.GUID
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.clock.Now().UTC()
	}

	data, err := json.Marshal(item)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal item")
	}
	return data, nil
}

const insertItem = `INSERT INTO items (
	guid, name, category, rarity, template, public, user_id, source, description, data, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func itemArgs(item *entities.Item, data []byte) []any {
	return []any{
		item.GUID,
		item.Name,
		string(item.Category),
		string(item.Rarity),
		item.Template,
		item.Public,
		item.UserID,
		item.Source,
		item.Description,
		string(data),
		item.CreatedAt.UTC().UnixMilli(),
	}
}

func (r *sqliteRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	data, err := r.prepare(input.Item)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, insertItem, itemArgs(input.Item, data)...); err != nil {
		if isUniqueViolation(err) {
			return nil, errors.AlreadyExistsf("item with GUID %s already exists", input.Item.GUID)
		}
		return nil, errors.Wrapf(err, "failed to insert item")
	}

	return &CreateOutput{Item: input.Item}, nil
}

func (r *sqliteRepository) Upsert(ctx context.Context, input UpsertInput) (*UpsertOutput, error) {
	data, err := r.prepare(input.Item)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE items SET
		name = ?, category = ?, rarity = ?, template = ?, public = ?, user_id = ?,
		source = ?, description = ?, data = ?
		WHERE guid = ?`,
		input.Item.Name,
		string(input.Item.Category),
		string(input.Item.Rarity),
		input.Item.Template,
		input.Item.Public,
		input.Item.UserID,
		input.Item.Source,
		input.Item.Description,
		string(data),
		input.Item.GUID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update item")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return &UpsertOutput{Item: input.Item}, nil
	}

	if _, err := r.db.ExecContext(ctx, insertItem, itemArgs(input.Item, data)...); err != nil {
		return nil, errors.Wrapf(err, "failed to insert item")
	}
	return &UpsertOutput{Item: input.Item, Created: true}, nil
}

func (r *sqliteRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.GUID == "" {
		return nil, errors.InvalidArgument("item GUID cannot be empty")
	}

	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE guid = ?`, input.GUID).Scan(&raw)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("item %s not found", input.GUID)
		}
		return nil, errors.Wrapf(err, "failed to get item")
	}

	item, err := decodeItem(raw)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Item: item}, nil
}

func (r *sqliteRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	skip := max(0, input.Skip)

	where, args := buildFilter(input)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, errors.Wrapf(err, "failed to count items")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items`+where+` ORDER BY created_at DESC, guid LIMIT ? OFFSET ?`,
		append(args, limit, skip)...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list items")
	}
	defer func() { _ = rows.Close() }()

	out := &ListOutput{Items: []*entities.Item{}, Total: total, Limit: limit, Skip: skip}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrapf(err, "failed to scan item")
		}
		item, err := decodeItem(raw)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to iterate items")
	}

	return out, nil
}

func buildFilter(input ListInput) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if input.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(input.Category))
	}
	if input.Rarity != "" {
		conds = append(conds, "rarity = ?")
		args = append(args, string(input.Rarity))
	}
	if input.Template != nil {
		conds = append(conds, "template = ?")
		args = append(args, *input.Template)
	}
	if input.Public != nil {
		conds = append(conds, "public = ?")
		args = append(args, *input.Public)
	}
	if input.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, input.UserID)
	}
	if q := strings.TrimSpace(input.Search); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		conds = append(conds, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func decodeItem(raw string) (*entities.Item, error) {
	var item entities.Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal item")
	}
	return &item, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if stderrors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
