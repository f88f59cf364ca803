package persistence

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
	"github.com/campuslabs/softreq/modules/requests/infrastructure/persistence/models"
)

func toDBRequest(r request.Request) models.SoftwareRequest {
	return models.SoftwareRequest{
		ID:                r.ID(),
		SoftwareName:      r.SoftwareName(),
		SoftwareVersion:   r.SoftwareVersion(),
		LabID:             r.LabID(),
		RequestDate:       toPGDate(r.RequestDate()),
		Status:            string(r.Status()),
		RequesterIdentity: r.RequesterIdentity(),
	}
}

func toDomainRequest(row models.SoftwareRequest) request.Request {
	return request.Hydrate(
		row.ID,
		row.SoftwareName,
		row.SoftwareVersion,
		row.LabID,
		fromPGDate(row.RequestDate),
		request.Status(row.Status),
		row.RequesterIdentity,
	)
}

func toPGDate(d request.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func fromPGDate(d pgtype.Date) request.Date {
	if !d.Valid {
		return request.Date{}
	}
	return request.DateOf(d.Time)
}
