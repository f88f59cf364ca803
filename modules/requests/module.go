package requests

import (
	"embed"
	"io/fs"

	"github.com/go-faster/errors"

	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
	"github.com/campuslabs/softreq/modules/requests/infrastructure/persistence"
	"github.com/campuslabs/softreq/modules/requests/presentation/controllers"
	"github.com/campuslabs/softreq/modules/requests/services"
	"github.com/campuslabs/softreq/pkg/application"
	"github.com/campuslabs/softreq/pkg/authn"
)

//go:embed presentation/locales/*.json
var LocaleFiles embed.FS

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

// Schema returns the goose migrations of the software_requests table.
func Schema() (fs.FS, error) {
	return fs.Sub(migrationFiles, "infrastructure/persistence/schema")
}

type ModuleOptions struct {
	Policy    services.Policy
	Verifier  authn.Verifier
	Lifecycle services.Options
	// Repository overrides the store picked from the application pool.
	Repository request.Repository
}

func NewModule(opts *ModuleOptions) application.Module {
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	if m.options == nil || m.options.Policy == nil || m.options.Verifier == nil {
		return errors.New("requests: policy and verifier are required")
	}

	schema, err := Schema()
	if err != nil {
		return errors.Wrap(err, "requests: schema")
	}
	app.Migrations().RegisterSchema(m.Name(), schema)

	if err := app.RegisterLocaleFiles(&LocaleFiles); err != nil {
		return errors.Wrap(err, "requests: locales")
	}

	repo := m.options.Repository
	if repo == nil {
		if app.DB() == nil {
			app.Logger().Warn("requests: no database pool, using the in-memory store")
			repo = persistence.NewMemoryRepository()
		} else {
			repo = persistence.NewRequestRepository()
		}
	}

	app.RegisterServices(
		services.NewRequestService(repo, m.options.Policy, m.options.Lifecycle),
	)

	app.RegisterControllers(
		controllers.NewRequestAPIController(app, m.options.Verifier),
	)
	return nil
}

func (m *Module) Name() string {
	return "requests"
}
