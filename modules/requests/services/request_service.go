package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
	"github.com/campuslabs/softreq/pkg/authz"
	"github.com/campuslabs/softreq/pkg/composables"
)

var errAbsent = errors.New("request absent")

// Policy gates lifecycle operations by role.
type Policy interface {
	Authorize(ctx context.Context, p authz.Principal, op authz.Operation) error
	Check(ctx context.Context, p authz.Principal, op authz.Operation) (bool, error)
}

// RequestService is the only writer of software requests. Every method
// consults the policy before touching the repository.
type RequestService struct {
	repo   request.Repository
	policy Policy
	opts   Options
}

func NewRequestService(repo request.Repository, policy Policy, opts Options) *RequestService {
	return &RequestService{
		repo:   repo,
		policy: policy,
		opts:   opts.normalized(),
	}
}

func (s *RequestService) Options() Options {
	return s.opts
}

func (s *RequestService) ListAll(ctx context.Context, p authz.Principal) (_ []request.Request, err error) {
	defer observe(authz.OpListAll, time.Now(), &err)

	if err := s.policy.Authorize(ctx, p, authz.OpListAll); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx)
}

// ListOwn returns the requests whose requester identity equals p.Identity.
func (s *RequestService) ListOwn(ctx context.Context, p authz.Principal) (_ []request.Request, err error) {
	defer observe(authz.OpListOwn, time.Now(), &err)

	if err := s.policy.Authorize(ctx, p, authz.OpListOwn); err != nil {
		return nil, err
	}
	return s.repo.GetByRequester(ctx, p.Identity)
}

// Create stores a new PENDING request owned by p. Descriptive fields are
// kept verbatim; no validation or duplicate detection is applied.
func (s *RequestService) Create(ctx context.Context, p authz.Principal, dto request.CreateDTO) (_ request.Request, err error) {
	defer observe(authz.OpCreate, time.Now(), &err)

	if err := s.policy.Authorize(ctx, p, authz.OpCreate); err != nil {
		return request.Request{}, err
	}

	var created request.Request
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, dto.ToEntity(p.Identity))
		return err
	})
	if err != nil {
		return request.Request{}, err
	}
	s.logger(ctx).WithFields(logrus.Fields{
		"software_request_id": created.ID(),
		"requester":           created.RequesterIdentity(),
	}).Info("software request created")
	return created, nil
}

// UpdateStatus overwrites the status of request id. Only the status changes.
func (s *RequestService) UpdateStatus(ctx context.Context, p authz.Principal, id int64, status string) (_ request.Request, err error) {
	defer observe(authz.OpUpdateStatus, time.Now(), &err)

	if err := s.policy.Authorize(ctx, p, authz.OpUpdateStatus); err != nil {
		return request.Request{}, err
	}

	var current, updated request.Request
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		current, err = s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		next, err := s.nextStatus(current.Status(), status)
		if err != nil {
			return err
		}
		updated, err = s.repo.Update(txCtx, current.WithStatus(next))
		return err
	})
	if err != nil {
		return request.Request{}, err
	}
	s.logger(ctx).WithFields(logrus.Fields{
		"software_request_id": id,
		"from":                current.Status(),
		"to":                  updated.Status(),
	}).Info("software request status changed")
	return updated, nil
}

func (s *RequestService) nextStatus(current request.Status, raw string) (request.Status, error) {
	if s.opts.StatusPolicy == StatusPolicyPermissive {
		return request.Status(raw), nil
	}
	next, ok := request.ParseStatus(raw)
	if !ok {
		return "", request.ErrInvalidStatus.WithTemplateData(map[string]string{"status": raw})
	}
	if !current.CanTransitionTo(next) {
		return "", request.ErrInvalidTransition.WithTemplateData(map[string]string{
			"from": string(current),
			"to":   string(next),
		})
	}
	return next, nil
}

// Delete removes request id. Deleting an absent id succeeds.
func (s *RequestService) Delete(ctx context.Context, p authz.Principal, id int64) (err error) {
	defer observe(authz.OpDelete, time.Now(), &err)

	if err := s.policy.Authorize(ctx, p, authz.OpDelete); err != nil {
		return err
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, id)
		if errors.Is(err, request.ErrNotFound) {
			return errAbsent
		}
		if err != nil {
			return err
		}
		if !authz.Owns(p, current.RequesterIdentity()) {
			if err := s.checkForeignDelete(txCtx, p, current); err != nil {
				return err
			}
		}
		return s.repo.Delete(txCtx, id)
	})
	if errors.Is(err, errAbsent) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger(ctx).WithField("software_request_id", id).Info("software request deleted")
	return nil
}

func (s *RequestService) checkForeignDelete(ctx context.Context, p authz.Principal, r request.Request) error {
	if s.opts.DeleteOwnership == DeleteOwnershipEnforce {
		return s.policy.Authorize(ctx, p, authz.OpDeleteAny)
	}

	allowed, err := s.policy.Check(ctx, p, authz.OpDeleteAny)
	if err != nil {
		return err
	}
	if !allowed {
		s.logger(ctx).WithFields(logrus.Fields{
			"software_request_id": r.ID(),
			"owner":               r.RequesterIdentity(),
			"caller":              p.Identity,
		}).Warn("delete ownership not enforced")
	}
	return nil
}

func (s *RequestService) logger(ctx context.Context) *logrus.Entry {
	return composables.UseLogger(ctx).WithField("component", "requests")
}
