package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
	"github.com/campuslabs/softreq/modules/requests/infrastructure/persistence/models"
	"github.com/campuslabs/softreq/pkg/composables"
)

const (
	selectRequestsQuery = `
		SELECT id, software_name, software_version, lab_id, request_date, status, requester_identity
		FROM software_requests`

	insertRequestQuery = `
		INSERT INTO software_requests (software_name, software_version, lab_id, request_date, status, requester_identity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, software_name, software_version, lab_id, request_date, status, requester_identity`

	updateRequestStatusQuery = `
		UPDATE software_requests SET status = $2
		WHERE id = $1
		RETURNING id, software_name, software_version, lab_id, request_date, status, requester_identity`

	deleteRequestQuery = `DELETE FROM software_requests WHERE id = $1`
)

type RequestRepository struct{}

func NewRequestRepository() request.Repository {
	return &RequestRepository{}
}

func (r *RequestRepository) GetAll(ctx context.Context) ([]request.Request, error) {
	return r.queryRequests(ctx, selectRequestsQuery+" ORDER BY id")
}

func (r *RequestRepository) GetByRequester(ctx context.Context, requesterIdentity string) ([]request.Request, error) {
	return r.queryRequests(ctx, selectRequestsQuery+" WHERE requester_identity = $1 ORDER BY id", requesterIdentity)
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.Request{}, err
	}

	row, err := scanRequest(tx.QueryRow(ctx, selectRequestsQuery+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Request{}, request.ErrNotFound
		}
		return request.Request{}, gerrors.Wrapf(err, "get software request %d", id)
	}
	return toDomainRequest(row), nil
}

func (r *RequestRepository) Create(ctx context.Context, entity request.Request) (request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.Request{}, err
	}

	dbRow := toDBRequest(entity)
	row, err := scanRequest(tx.QueryRow(
		ctx,
		insertRequestQuery,
		dbRow.SoftwareName,
		dbRow.SoftwareVersion,
		dbRow.LabID,
		dbRow.RequestDate,
		dbRow.Status,
		dbRow.RequesterIdentity,
	))
	if err != nil {
		return request.Request{}, gerrors.Wrap(err, "create software request")
	}
	return toDomainRequest(row), nil
}

func (r *RequestRepository) Update(ctx context.Context, entity request.Request) (request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.Request{}, err
	}

	row, err := scanRequest(tx.QueryRow(ctx, updateRequestStatusQuery, entity.ID(), string(entity.Status())))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Request{}, request.ErrNotFound
		}
		return request.Request{}, gerrors.Wrapf(err, "update software request %d", entity.ID())
	}
	return toDomainRequest(row), nil
}

func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, deleteRequestQuery, id); err != nil {
		return gerrors.Wrapf(err, "delete software request %d", id)
	}
	return nil
}

func (r *RequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "query software requests")
	}
	defer rows.Close()

	results := make([]request.Request, 0)
	for rows.Next() {
		row, err := scanRequest(rows)
		if err != nil {
			return nil, gerrors.Wrap(err, "scan software request")
		}
		results = append(results, toDomainRequest(row))
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "iterate software requests")
	}
	return results, nil
}

func scanRequest(row pgx.Row) (models.SoftwareRequest, error) {
	var m models.SoftwareRequest
	err := row.Scan(
		&m.ID,
		&m.SoftwareName,
		&m.SoftwareVersion,
		&m.LabID,
		&m.RequestDate,
		&m.Status,
		&m.RequesterIdentity,
	)
	return m, err
}
