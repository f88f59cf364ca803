package application

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/go-faster/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

var ErrNoDatabase = errors.New("migrations: no database configured")

type namedSchema struct {
	name string
	fsys fs.FS
}

// gooseMigrationManager runs each registered schema with its own goose
// provider, in registration order.
type gooseMigrationManager struct {
	db      *sql.DB
	logger  *logrus.Logger
	schemas []namedSchema
}

// NewMigrationManager returns a manager over db, a database/sql handle
// opened with the "postgres" driver. A nil db accepts registrations and
// fails on use.
func NewMigrationManager(db *sql.DB, logger *logrus.Logger) MigrationManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &gooseMigrationManager{db: db, logger: logger}
}

func (m *gooseMigrationManager) RegisterSchema(name string, migrations fs.FS) {
	m.schemas = append(m.schemas, namedSchema{name: name, fsys: migrations})
}

func (m *gooseMigrationManager) provider(s namedSchema) (*goose.Provider, error) {
	if m.db == nil {
		return nil, ErrNoDatabase
	}
	p, err := goose.NewProvider(goose.DialectPostgres, m.db, s.fsys)
	if err != nil {
		return nil, errors.Wrapf(err, "migrations: provider for %s", s.name)
	}
	return p, nil
}

func (m *gooseMigrationManager) Up(ctx context.Context) error {
	for _, s := range m.schemas {
		p, err := m.provider(s)
		if err != nil {
			return err
		}
		results, err := p.Up(ctx)
		if err != nil {
			return errors.Wrapf(err, "migrations: up %s", s.name)
		}
		for _, r := range results {
			m.logger.WithFields(logrus.Fields{
				"schema":   s.name,
				"version":  r.Source.Version,
				"duration": r.Duration,
			}).Info("migration applied")
		}
	}
	return nil
}

// Down rolls back the latest migration of each schema, last registered first.
func (m *gooseMigrationManager) Down(ctx context.Context) error {
	for i := len(m.schemas) - 1; i >= 0; i-- {
		s := m.schemas[i]
		p, err := m.provider(s)
		if err != nil {
			return err
		}
		r, err := p.Down(ctx)
		if err != nil {
			if errors.Is(err, goose.ErrNoNextVersion) {
				continue
			}
			return errors.Wrapf(err, "migrations: down %s", s.name)
		}
		if r != nil && r.Source != nil {
			m.logger.WithFields(logrus.Fields{
				"schema":  s.name,
				"version": r.Source.Version,
			}).Info("migration rolled back")
		}
	}
	return nil
}

func (m *gooseMigrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	var out []MigrationStatus
	for _, s := range m.schemas {
		p, err := m.provider(s)
		if err != nil {
			return nil, err
		}
		statuses, err := p.Status(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "migrations: status %s", s.name)
		}
		for _, st := range statuses {
			out = append(out, MigrationStatus{
				Schema:  s.name,
				Version: st.Source.Version,
				Source:  st.Source.Path,
				Applied: st.State == goose.StateApplied,
			})
		}
	}
	return out, nil
}
