package request

// Request is a lab software installation request. Only the status changes
// after creation.
type Request struct {
	id                int64
	softwareName      string
	softwareVersion   string
	labID             string
	requestDate       Date
	status            Status
	requesterIdentity string
}

// New builds an unsaved request owned by requesterIdentity. The status is
// always PENDING; fields are kept verbatim.
func New(softwareName, softwareVersion, labID string, requestDate Date, requesterIdentity string) Request {
	return Request{
		softwareName:      softwareName,
		softwareVersion:   softwareVersion,
		labID:             labID,
		requestDate:       requestDate,
		status:            StatusPending,
		requesterIdentity: requesterIdentity,
	}
}

func Hydrate(
	id int64,
	softwareName string,
	softwareVersion string,
	labID string,
	requestDate Date,
	status Status,
	requesterIdentity string,
) Request {
	return Request{
		id:                id,
		softwareName:      softwareName,
		softwareVersion:   softwareVersion,
		labID:             labID,
		requestDate:       requestDate,
		status:            status,
		requesterIdentity: requesterIdentity,
	}
}

func (r Request) ID() int64                 { return r.id }
func (r Request) SoftwareName() string      { return r.softwareName }
func (r Request) SoftwareVersion() string   { return r.softwareVersion }
func (r Request) LabID() string             { return r.labID }
func (r Request) RequestDate() Date         { return r.requestDate }
func (r Request) Status() Status            { return r.status }
func (r Request) RequesterIdentity() string { return r.requesterIdentity }

// WithStatus returns a copy of r carrying status s.
func (r Request) WithStatus(s Status) Request {
	r.status = s
	return r
}

// WithID returns a copy of r carrying the store assigned id.
func (r Request) WithID(id int64) Request {
	r.id = id
	return r
}
