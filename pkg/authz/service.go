package authz

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/sirupsen/logrus"
)

var (
	//go:embed policy/model.conf
	defaultModel string

	//go:embed policy/policy.csv
	defaultPolicy string
)

// Service evaluates principals against the policy table.
type Service struct {
	cfg          Config
	enforcer     *casbin.Enforcer
	logger       *logrus.Entry
	flagProvider FlagProvider
	mu           sync.RWMutex
}

// NewService constructs a Service with the provided config.
func NewService(cfg Config) (*Service, error) {
	cfg = cfg.normalized()

	var logger *logrus.Entry
	if cfg.Logger != nil {
		logger = cfg.Logger.WithField("component", "authz")
	} else {
		logger = logrus.WithField("component", "authz")
	}

	m, err := loadModel(cfg)
	if err != nil {
		return nil, err
	}

	enf, err := casbin.NewEnforcer(m, policyAdapter(cfg))
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}
	if err := enf.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: failed to load policies: %w", err)
	}

	return &Service{
		cfg:          cfg,
		enforcer:     enf,
		logger:       logger,
		flagProvider: cfg.flagProvider(),
	}, nil
}

func loadModel(cfg Config) (model.Model, error) {
	if cfg.ModelPath == "" {
		m, err := model.NewModelFromString(defaultModel)
		if err != nil {
			return nil, configError("invalid embedded model: %v", err)
		}
		return m, nil
	}
	m, err := model.NewModelFromFile(cfg.ModelPath)
	if err != nil {
		return nil, configError("invalid model %s: %v", cfg.ModelPath, err)
	}
	return m, nil
}

func policyAdapter(cfg Config) persist.Adapter {
	if cfg.PolicyPath == "" {
		return stringadapter.NewAdapter(defaultPolicy)
	}
	return fileadapter.NewAdapter(cfg.PolicyPath)
}

// Mode returns the enforcement mode currently reported by the flag provider.
func (s *Service) Mode() Mode {
	return s.flagProvider.Mode()
}

// Authorize returns an error matching ErrForbidden if p may not invoke op.
func (s *Service) Authorize(ctx context.Context, p Principal, op Operation) error {
	mode := s.flagProvider.Mode()
	if mode == ModeDisabled {
		recordDecision(op, mode, true)
		return nil
	}

	allowed, err := s.Check(ctx, p, op)
	if err != nil {
		return err
	}
	recordDecision(op, mode, allowed)
	if allowed {
		return nil
	}

	fields := logrus.Fields{
		"subject":   p.Identity,
		"roles":     p.Roles,
		"object":    Object,
		"operation": op,
		"mode":      mode,
	}
	if mode == ModeShadow {
		s.logger.WithContext(ctx).WithFields(fields).Warn("authz shadow deny")
		return nil
	}
	s.logger.WithContext(ctx).WithFields(fields).Warn("authz denied request")
	return forbiddenError(p, op)
}

// Check evaluates a request without returning an authorization error.
// A principal is allowed if any one of its roles is allowed.
func (s *Service) Check(ctx context.Context, p Principal, op Operation) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, role := range p.Roles {
		res, err := s.enforcer.Enforce(SubjectForRole(role), Object, string(op))
		if err != nil {
			return false, fmt.Errorf("authz: enforce failed: %w", err)
		}
		if res {
			return true, nil
		}
	}
	return false, nil
}

// ReloadPolicy reloads policy data from its source.
func (s *Service) ReloadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("authz: reload policy failed: %w", err)
	}
	s.logger.WithContext(ctx).Info("authz policy reloaded")
	return nil
}

// Table evaluates every known operation for each of the given roles.
func (s *Service) Table(ctx context.Context, roles ...string) (map[string]map[Operation]bool, error) {
	out := make(map[string]map[Operation]bool, len(roles))
	for _, role := range roles {
		row := make(map[Operation]bool, len(Operations))
		for _, op := range Operations {
			allowed, err := s.Check(ctx, NewPrincipal("table", role), op)
			if err != nil {
				return nil, err
			}
			row[op] = allowed
		}
		out[role] = row
	}
	return out, nil
}
