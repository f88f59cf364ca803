package mappers

import (
	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
	"github.com/campuslabs/softreq/modules/requests/presentation/viewmodels"
)

func RequestToResponse(r request.Request) viewmodels.RequestResponse {
	return viewmodels.RequestResponse{
		ID:                r.ID(),
		SoftwareName:      r.SoftwareName(),
		SoftwareVersion:   r.SoftwareVersion(),
		LabID:             r.LabID(),
		RequestDate:       r.RequestDate(),
		Status:            string(r.Status()),
		RequesterIdentity: r.RequesterIdentity(),
	}
}

func RequestsToResponses(items []request.Request) []viewmodels.RequestResponse {
	out := make([]viewmodels.RequestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, RequestToResponse(r))
	}
	return out
}
