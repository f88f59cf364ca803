package modules

import (
	"github.com/go-faster/errors"

	"github.com/campuslabs/softreq/modules/requests"
	"github.com/campuslabs/softreq/modules/requests/services"
	"github.com/campuslabs/softreq/pkg/application"
	"github.com/campuslabs/softreq/pkg/authn"
	"github.com/campuslabs/softreq/pkg/configuration"
)

// BuiltInModules returns the modules served by the default entrypoint.
func BuiltInModules(conf *configuration.Configuration, policy services.Policy, verifier authn.Verifier) []application.Module {
	return []application.Module{
		requests.NewModule(&requests.ModuleOptions{
			Policy:   policy,
			Verifier: verifier,
			Lifecycle: services.Options{
				DeleteOwnership: services.ParseDeleteOwnership(conf.Requests.DeleteOwnership),
				StatusPolicy:    services.ParseStatusPolicy(conf.Requests.StatusPolicy),
			},
		}),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return errors.Wrapf(err, "module %s", module.Name())
		}
	}
	return nil
}
