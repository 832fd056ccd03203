package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

//go:embed migrations
var migrationFS embed.FS

var migrationFileRE = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

type MigrationStatus struct {
	Version   int
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

type schemaMigration struct {
	Version   int       `gorm:"column:version;primaryKey;autoIncrement:false"`
	Name      string    `gorm:"column:name"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

// LoadMigrations reads the embedded migrations for a dialect, ordered by version.
func LoadMigrations(dialect string) ([]Migration, error) {
	return loadMigrationsFrom(migrationFS, path.Join("migrations", dialect))
}

func loadMigrationsFrom(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations %s: %w", dir, err)
	}
	byVersion := map[int]*Migration{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFileRE.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("unexpected migration file %q", e.Name())
		}
		version, _ := strconv.Atoi(m[1])
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: m[2]}
			byVersion[version] = mig
		} else if mig.Name != m[2] {
			return nil, fmt.Errorf("migration %d has conflicting names %q and %q", version, mig.Name, m[2])
		}
		if m[3] == "up" {
			mig.Up = string(raw)
		} else {
			mig.Down = string(raw)
		}
	}
	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if strings.TrimSpace(mig.Up) == "" {
			return nil, fmt.Errorf("migration %d_%s has no up script", mig.Version, mig.Name)
		}
		out = append(out, *mig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

type Migrator struct {
	db         *gorm.DB
	log        *logger.Logger
	migrations []Migration
}

func NewMigrator(db *gorm.DB, log *logger.Logger) (*Migrator, error) {
	migrations, err := LoadMigrations(db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	return NewMigratorWith(db, log, migrations), nil
}

func NewMigratorWith(db *gorm.DB, log *logger.Logger, migrations []Migration) *Migrator {
	return &Migrator{db: db, log: log.With("component", "Migrator"), migrations: migrations}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	return m.db.WithContext(ctx).Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`).Error
}

func (m *Migrator) applied(ctx context.Context) (map[int]schemaMigration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	var rows []schemaMigration
	if err := m.db.WithContext(ctx).Order("version ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int]schemaMigration, len(rows))
	for _, r := range rows {
		out[r.Version] = r
	}
	return out, nil
}

// Up applies pending migrations in version order, each in its own transaction.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	var applied []Migration
	for _, mig := range m.migrations {
		if _, ok := done[mig.Version]; ok {
			continue
		}
		m.log.Info("Applying migration", "version", mig.Version, "name", mig.Name)
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := execScript(tx, mig.Up); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Version: mig.Version, Name: mig.Name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d_%s: %w", mig.Version, mig.Name, err)
		}
		applied = append(applied, mig)
	}
	return applied, nil
}

// Down reverts the most recently applied migration. It returns nil when nothing is applied.
func (m *Migrator) Down(ctx context.Context) (*Migration, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if _, ok := done[mig.Version]; !ok {
			continue
		}
		if strings.TrimSpace(mig.Down) == "" {
			return nil, fmt.Errorf("migration %d_%s is irreversible", mig.Version, mig.Name)
		}
		m.log.Info("Reverting migration", "version", mig.Version, "name", mig.Name)
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := execScript(tx, mig.Down); err != nil {
				return err
			}
			return tx.Where("version = ?", mig.Version).Delete(&schemaMigration{}).Error
		})
		if err != nil {
			return nil, fmt.Errorf("revert %d_%s: %w", mig.Version, mig.Name, err)
		}
		return &mig, nil
	}
	return nil, nil
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		st := MigrationStatus{Version: mig.Version, Name: mig.Name}
		if row, ok := done[mig.Version]; ok {
			at := row.AppliedAt
			st.Applied = true
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

func execScript(tx *gorm.DB, script string) error {
	for _, stmt := range SplitStatements(script) {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// SplitStatements splits a SQL script on top-level semicolons. Semicolons inside
// quoted strings, $$-quoted function bodies and -- comments do not split.
func SplitStatements(script string) []string {
	var (
		out      []string
		cur      strings.Builder
		inQuote  bool
		inDollar bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case !inQuote && !inDollar && c == '-' && i+1 < len(script) && script[i+1] == '-':
			for i < len(script) && script[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
			continue
		case !inQuote && c == '$' && i+1 < len(script) && script[i+1] == '$':
			inDollar = !inDollar
			cur.WriteString("$$")
			i++
			continue
		case !inDollar && c == '\'':
			inQuote = !inQuote
		case !inQuote && !inDollar && c == ';':
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()
	return out
}
