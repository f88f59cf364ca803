package request

// CreateDTO is the inbound payload of a new request. ID, Status and
// RequesterIdentity are accepted for compatibility and ignored.
type CreateDTO struct {
	ID                int64  `json:"id,omitempty"`
	SoftwareName      string `json:"softwareName"`
	SoftwareVersion   string `json:"softwareVersion"`
	LabID             string `json:"labId"`
	RequestDate       Date   `json:"requestDate"`
	Status            string `json:"status,omitempty"`
	RequesterIdentity string `json:"requesterIdentity,omitempty"`
}

// ToEntity copies the descriptive fields verbatim and stamps the owner.
func (d CreateDTO) ToEntity(requesterIdentity string) Request {
	return New(d.SoftwareName, d.SoftwareVersion, d.LabID, d.RequestDate, requesterIdentity)
}

// UpdateStatusDTO carries the only mutable field.
type UpdateStatusDTO struct {
	Status string `json:"status"`
}
