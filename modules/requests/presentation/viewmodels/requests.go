package viewmodels

import "github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"

// RequestResponse is the wire shape of a software request.
type RequestResponse struct {
	ID                int64        `json:"id"`
	SoftwareName      string       `json:"softwareName"`
	SoftwareVersion   string       `json:"softwareVersion"`
	LabID             string       `json:"labId"`
	RequestDate       request.Date `json:"requestDate"`
	Status            string       `json:"status"`
	RequesterIdentity string       `json:"requesterIdentity"`
}
