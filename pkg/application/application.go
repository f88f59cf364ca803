package application

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"reflect"
	"sort"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

func listFiles(fsys fs.FS, dir string) ([]string, error) {
	var fileList []string

	err := fs.WalkDir(fsys, dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			fileList = append(fileList, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading directory %q: %w", dir, err)
	}

	return fileList, nil
}

// LoadBundle returns an English-default bundle that reads JSON message files.
func LoadBundle() *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	return bundle
}

func defaultSupportedLanguageCodes() []string {
	return []string{"en", "pt-BR"}
}

type ApplicationOptions struct {
	// Pool is nil when the process runs on the in-memory store.
	Pool       *pgxpool.Pool
	Logger     *logrus.Logger
	Migrations MigrationManager
	// Bundle defaults to LoadBundle().
	Bundle             *i18n.Bundle
	SupportedLanguages []string
}

func New(opts *ApplicationOptions) Application {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	migrations := opts.Migrations
	if migrations == nil {
		migrations = NewMigrationManager(nil, logger)
	}
	bundle := opts.Bundle
	if bundle == nil {
		bundle = LoadBundle()
	}
	supportedLanguages := opts.SupportedLanguages
	if len(supportedLanguages) == 0 {
		supportedLanguages = defaultSupportedLanguageCodes()
	}
	return &application{
		pool:               opts.Pool,
		logger:             logger,
		bundle:             bundle,
		supportedLanguages: supportedLanguages,
		controllers:        make(map[string]Controller),
		services:           make(map[reflect.Type]interface{}),
		migrations:         migrations,
	}
}

// application with a dynamically extendable service registry
type application struct {
	pool               *pgxpool.Pool
	logger             *logrus.Logger
	bundle             *i18n.Bundle
	supportedLanguages []string
	services           map[reflect.Type]interface{}
	controllers        map[string]Controller
	middleware         []mux.MiddlewareFunc
	migrations         MigrationManager
}

func (app *application) Middleware() []mux.MiddlewareFunc {
	return app.middleware
}

func (app *application) DB() *pgxpool.Pool {
	return app.pool
}

func (app *application) Logger() *logrus.Logger {
	return app.logger
}

// Controllers returns the registered controllers ordered by key so route
// registration is deterministic.
func (app *application) Controllers() []Controller {
	keys := make([]string, 0, len(app.controllers))
	for k := range app.controllers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	controllers := make([]Controller, 0, len(keys))
	for _, k := range keys {
		controllers = append(controllers, app.controllers[k])
	}
	return controllers
}

func (app *application) Bundle() *i18n.Bundle {
	return app.bundle
}

func (app *application) GetSupportedLanguages() []string {
	return app.supportedLanguages
}

// RegisterLocaleFiles parses every message file in the given filesystems
// into the bundle. The file name carries the language tag, e.g. pt-BR.json.
func (app *application) RegisterLocaleFiles(fs ...*embed.FS) error {
	for _, localeFs := range fs {
		files, err := listFiles(localeFs, ".")
		if err != nil {
			return err
		}
		for _, file := range files {
			localeFile, err := localeFs.ReadFile(file)
			if err != nil {
				return errors.Wrap(err, "read locale file")
			}
			if _, err := app.bundle.ParseMessageFileBytes(localeFile, path.Base(file)); err != nil {
				return errors.Wrapf(err, "parse locale file %s", file)
			}
		}
	}
	return nil
}

func (app *application) Migrations() MigrationManager {
	return app.migrations
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}

// RegisterServices registers a new service in the application by its type
func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service retrieves a service by its type
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, exists := app.services[serviceType]
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) Services() map[reflect.Type]interface{} {
	return app.services
}
