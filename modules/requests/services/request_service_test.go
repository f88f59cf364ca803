package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
	"github.com/campuslabs/softreq/modules/requests/infrastructure/persistence"
	"github.com/campuslabs/softreq/modules/requests/services"
	"github.com/campuslabs/softreq/pkg/authz"
	"github.com/campuslabs/softreq/pkg/composables"
)

var (
	instructorA = authz.NewPrincipal("a@campus.edu", "PROFESSOR")
	instructorB = authz.NewPrincipal("b@campus.edu", "ROLE_PROFESSOR")
	admin       = authz.NewPrincipal("admin@campus.edu", "ADMIN")
	stranger    = authz.NewPrincipal("guest@campus.edu", "student")
)

type fixture struct {
	svc  *services.RequestService
	repo *persistence.MemoryRepository
	ctx  context.Context
	logs *logtest.Hook
}

func newFixture(t *testing.T, opts services.Options) fixture {
	t.Helper()
	policy, err := authz.NewService(authz.Config{})
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	repo := persistence.NewMemoryRepository()
	return fixture{
		svc:  services.NewRequestService(repo, policy, opts),
		repo: repo,
		ctx:  composables.WithLogger(context.Background(), logrus.NewEntry(logger)),
		logs: hook,
	}
}

func vscode() request.CreateDTO {
	return request.CreateDTO{
		SoftwareName:    "VSCode",
		SoftwareVersion: "latest",
		LabID:           "LAB-01",
		RequestDate:     request.NewDate(2024, time.January, 10),
	}
}

func TestRequestService_Scenario(t *testing.T) {
	f := newFixture(t, services.Options{})

	created, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID())
	assert.Equal(t, request.StatusPending, created.Status())
	assert.Equal(t, "a@campus.edu", created.RequesterIdentity())

	approved, err := f.svc.UpdateStatus(f.ctx, admin, created.ID(), "APPROVED")
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, approved.Status())

	own, err := f.svc.ListOwn(f.ctx, instructorB)
	require.NoError(t, err)
	assert.Empty(t, own)

	all, err := f.svc.ListAll(f.ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created.WithStatus(request.StatusApproved), all[0])
	assert.Equal(t, approved, all[0])

	mine, err := f.svc.ListOwn(f.ctx, instructorA)
	require.NoError(t, err)
	assert.Equal(t, []request.Request{approved}, mine)
}

type failingCommitTx struct {
	pgx.Tx
	err error
}

func (tx failingCommitTx) Commit(context.Context) error   { return tx.err }
func (tx failingCommitTx) Rollback(context.Context) error { return pgx.ErrTxClosed }

type txSource struct{ tx pgx.Tx }

func (s txSource) Begin(context.Context) (pgx.Tx, error) { return s.tx, nil }

func TestRequestService_CommitFailureSurfaces(t *testing.T) {
	f := newFixture(t, services.Options{})
	created, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)

	f.logs.Reset()

	commitErr := errors.New("could not serialize access")
	ctx := composables.WithTxBeginner(f.ctx, txSource{tx: failingCommitTx{err: commitErr}})

	_, err = f.svc.Create(ctx, instructorA, vscode())
	require.ErrorIs(t, err, commitErr)

	_, err = f.svc.UpdateStatus(ctx, admin, created.ID(), "APPROVED")
	require.ErrorIs(t, err, commitErr)

	err = f.svc.Delete(ctx, instructorA, created.ID())
	require.ErrorIs(t, err, commitErr)

	assert.Empty(t, f.logs.AllEntries())
}

func TestRequestService_RoleGates(t *testing.T) {
	f := newFixture(t, services.Options{})
	created, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)
	before, err := f.repo.GetAll(f.ctx)
	require.NoError(t, err)

	cases := []struct {
		name string
		call func() error
	}{
		{"instructor lists all", func() error { _, err := f.svc.ListAll(f.ctx, instructorA); return err }},
		{"admin lists own", func() error { _, err := f.svc.ListOwn(f.ctx, admin); return err }},
		{"admin creates", func() error { _, err := f.svc.Create(f.ctx, admin, vscode()); return err }},
		{"instructor updates status", func() error {
			_, err := f.svc.UpdateStatus(f.ctx, instructorA, created.ID(), "APPROVED")
			return err
		}},
		{"roleless deletes", func() error { return f.svc.Delete(f.ctx, stranger, created.ID()) }},
		{"no roles creates", func() error {
			_, err := f.svc.Create(f.ctx, authz.NewPrincipal("x@campus.edu"), vscode())
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.call(), authz.ErrForbidden)
		})
	}

	after, err := f.repo.GetAll(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "denied calls leave the store unchanged")
}

func TestRequestService_CreateIgnoresClientOwnedFields(t *testing.T) {
	f := newFixture(t, services.Options{})
	dto := vscode()
	dto.ID = 77
	dto.Status = "INSTALLED"
	dto.RequesterIdentity = "someone-else"

	created, err := f.svc.Create(f.ctx, instructorA, dto)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID())
	assert.Equal(t, request.StatusPending, created.Status())
	assert.Equal(t, instructorA.Identity, created.RequesterIdentity())
}

func TestRequestService_CreateAllowsDuplicatesAndEmptyFields(t *testing.T) {
	f := newFixture(t, services.Options{})
	first, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)
	second, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())

	empty, err := f.svc.Create(f.ctx, instructorA, request.CreateDTO{})
	require.NoError(t, err)
	assert.Equal(t, "", empty.SoftwareName())
	assert.True(t, empty.RequestDate().IsZero())
}

func TestRequestService_ListOwnIsExactMatch(t *testing.T) {
	f := newFixture(t, services.Options{})
	_, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)

	upper := authz.NewPrincipal("A@campus.edu", "PROFESSOR")
	own, err := f.svc.ListOwn(f.ctx, upper)
	require.NoError(t, err)
	assert.Empty(t, own)

	own, err = f.svc.ListOwn(f.ctx, instructorA)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestRequestService_UpdateStatusNotFound(t *testing.T) {
	for _, policy := range []services.StatusPolicy{services.StatusPolicyStrict, services.StatusPolicyPermissive} {
		t.Run(string(policy), func(t *testing.T) {
			f := newFixture(t, services.Options{StatusPolicy: policy})
			_, err := f.svc.UpdateStatus(f.ctx, admin, 999, "NOT-A-STATUS")
			require.ErrorIs(t, err, request.ErrNotFound)

			all, err := f.repo.GetAll(f.ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestRequestService_UpdateStatusStrict(t *testing.T) {
	f := newFixture(t, services.Options{StatusPolicy: services.StatusPolicyStrict})
	created, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(f.ctx, admin, created.ID(), "DONE")
	require.ErrorIs(t, err, request.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(f.ctx, admin, created.ID(), "INSTALLED")
	require.ErrorIs(t, err, request.ErrInvalidTransition)

	same, err := f.svc.UpdateStatus(f.ctx, admin, created.ID(), "PENDING")
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, same.Status())

	approved, err := f.svc.UpdateStatus(f.ctx, admin, created.ID(), "approved")
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, approved.Status())

	installed, err := f.svc.UpdateStatus(f.ctx, admin, created.ID(), "INSTALLED")
	require.NoError(t, err)
	assert.Equal(t, request.StatusInstalled, installed.Status())
	assert.Equal(t, created.WithStatus(request.StatusInstalled), installed)
}

func TestRequestService_UpdateStatusPermissive(t *testing.T) {
	f := newFixture(t, services.Options{StatusPolicy: services.StatusPolicyPermissive})
	created, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)

	installed, err := f.svc.UpdateStatus(f.ctx, admin, created.ID(), "INSTALLED")
	require.NoError(t, err)
	assert.Equal(t, request.StatusInstalled, installed.Status())

	odd, err := f.svc.UpdateStatus(f.ctx, admin, created.ID(), "whatever")
	require.NoError(t, err)
	assert.Equal(t, request.Status("whatever"), odd.Status())
	assert.Equal(t, created.WithStatus("whatever"), odd)
}

func TestRequestService_StrictRecoversUnknownStatus(t *testing.T) {
	permissive := newFixture(t, services.Options{StatusPolicy: services.StatusPolicyPermissive})
	created, err := permissive.svc.Create(permissive.ctx, instructorA, vscode())
	require.NoError(t, err)
	_, err = permissive.svc.UpdateStatus(permissive.ctx, admin, created.ID(), "whatever")
	require.NoError(t, err)

	policy, err := authz.NewService(authz.Config{})
	require.NoError(t, err)
	strict := services.NewRequestService(permissive.repo, policy, services.Options{})

	_, err = strict.UpdateStatus(permissive.ctx, admin, created.ID(), "APPROVED")
	require.ErrorIs(t, err, request.ErrInvalidTransition)

	reset, err := strict.UpdateStatus(permissive.ctx, admin, created.ID(), "pending")
	require.NoError(t, err)
	assert.Equal(t, created, reset)

	approved, err := strict.UpdateStatus(permissive.ctx, admin, created.ID(), "APPROVED")
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, approved.Status())
}

func TestRequestService_DeleteLegacy(t *testing.T) {
	f := newFixture(t, services.Options{})
	created, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, instructorB, created.ID()))
	_, err = f.repo.GetByID(f.ctx, created.ID())
	require.ErrorIs(t, err, request.ErrNotFound)

	var warned *logrus.Entry
	for _, entry := range f.logs.AllEntries() {
		if entry.Message == "delete ownership not enforced" {
			warned = entry
		}
	}
	require.NotNil(t, warned)
	assert.Equal(t, logrus.WarnLevel, warned.Level)
	assert.Equal(t, "b@campus.edu", warned.Data["caller"])
	assert.Equal(t, "a@campus.edu", warned.Data["owner"])

	f.logs.Reset()
	own, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(f.ctx, admin, own.ID()))
	for _, entry := range f.logs.AllEntries() {
		assert.NotEqual(t, "delete ownership not enforced", entry.Message)
	}
}

func TestRequestService_DeleteEnforced(t *testing.T) {
	f := newFixture(t, services.Options{DeleteOwnership: services.DeleteOwnershipEnforce})
	created, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)

	err = f.svc.Delete(f.ctx, instructorB, created.ID())
	require.ErrorIs(t, err, authz.ErrForbidden)
	_, err = f.repo.GetByID(f.ctx, created.ID())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, instructorA, created.ID()))

	other, err := f.svc.Create(f.ctx, instructorA, vscode())
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(f.ctx, admin, other.ID()))

	all, err := f.repo.GetAll(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRequestService_DeleteAbsentIsNoop(t *testing.T) {
	for _, mode := range []services.DeleteOwnership{services.DeleteOwnershipLegacy, services.DeleteOwnershipEnforce} {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, services.Options{DeleteOwnership: mode})
			require.NoError(t, f.svc.Delete(f.ctx, instructorA, 12345))
			require.NoError(t, f.svc.Delete(f.ctx, admin, 12345))
		})
	}
}

type failingRepo struct {
	request.Repository
	err error
}

func (r failingRepo) GetAll(context.Context) ([]request.Request, error) { return nil, r.err }
func (r failingRepo) GetByID(context.Context, int64) (request.Request, error) {
	return request.Request{}, r.err
}
func (r failingRepo) Create(context.Context, request.Request) (request.Request, error) {
	return request.Request{}, r.err
}

func TestRequestService_StorageFailuresSurface(t *testing.T) {
	policy, err := authz.NewService(authz.Config{})
	require.NoError(t, err)
	boom := errors.New("db unavailable")
	svc := services.NewRequestService(failingRepo{err: boom}, policy, services.Options{})
	ctx := context.Background()

	_, err = svc.ListAll(ctx, admin)
	require.ErrorIs(t, err, boom)

	_, err = svc.Create(ctx, instructorA, vscode())
	require.ErrorIs(t, err, boom)

	_, err = svc.UpdateStatus(ctx, admin, 1, "APPROVED")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, request.ErrNotFound)

	err = svc.Delete(ctx, admin, 1)
	require.ErrorIs(t, err, boom)
}

func TestParseOptions(t *testing.T) {
	assert.Equal(t, services.DeleteOwnershipLegacy, services.ParseDeleteOwnership(""))
	assert.Equal(t, services.DeleteOwnershipEnforce, services.ParseDeleteOwnership(" ENFORCE "))
	assert.Equal(t, services.StatusPolicyStrict, services.ParseStatusPolicy("bogus"))
	assert.Equal(t, services.StatusPolicyPermissive, services.ParseStatusPolicy("permissive"))

	f := newFixture(t, services.Options{})
	assert.Equal(t, services.Options{
		DeleteOwnership: services.DeleteOwnershipLegacy,
		StatusPolicy:    services.StatusPolicyStrict,
	}, f.svc.Options())
}
