package request_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
)

func TestNew_ForcesPending(t *testing.T) {
	d := request.NewDate(2024, time.January, 10)
	r := request.New("VSCode", "latest", "LAB-01", d, "a@campus.edu")

	assert.Equal(t, request.StatusPending, r.Status())
	assert.Equal(t, "VSCode", r.SoftwareName())
	assert.Equal(t, "latest", r.SoftwareVersion())
	assert.Equal(t, "LAB-01", r.LabID())
	assert.Equal(t, d, r.RequestDate())
	assert.Equal(t, "a@campus.edu", r.RequesterIdentity())
	assert.Zero(t, r.ID())
}

func TestWithStatus_LeavesOtherFields(t *testing.T) {
	r := request.Hydrate(7, "GIMP", "2.10", "LAB-02", request.NewDate(2024, 3, 1), request.StatusPending, "b@campus.edu")
	updated := r.WithStatus(request.StatusApproved)

	assert.Equal(t, request.StatusPending, r.Status())
	assert.Equal(t, request.StatusApproved, updated.Status())
	assert.Equal(t, r.WithStatus(request.StatusApproved), updated)
	assert.Equal(t, int64(7), updated.ID())
	assert.Equal(t, "b@campus.edu", updated.RequesterIdentity())
}

func TestCreateDTO_IgnoresServerOwnedFields(t *testing.T) {
	var dto request.CreateDTO
	body := `{"id":99,"softwareName":"R","softwareVersion":"4.3","labId":"LAB-09",` +
		`"requestDate":"2024-05-20","status":"INSTALLED","requesterIdentity":"mallory"}`
	require.NoError(t, json.Unmarshal([]byte(body), &dto))

	r := dto.ToEntity("carol@campus.edu")
	assert.Zero(t, r.ID())
	assert.Equal(t, request.StatusPending, r.Status())
	assert.Equal(t, "carol@campus.edu", r.RequesterIdentity())
	assert.Equal(t, request.NewDate(2024, time.May, 20), r.RequestDate())
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to request.Status
		ok       bool
	}{
		{request.StatusPending, request.StatusApproved, true},
		{request.StatusPending, request.StatusRejected, true},
		{request.StatusApproved, request.StatusInstalled, true},
		{request.StatusPending, request.StatusPending, true},
		{request.StatusPending, request.StatusInstalled, false},
		{request.StatusApproved, request.StatusRejected, false},
		{request.StatusRejected, request.StatusApproved, false},
		{request.StatusInstalled, request.StatusPending, false},
		{request.Status("whatever"), request.StatusPending, true},
		{request.Status("whatever"), request.StatusApproved, false},
		{request.Status("whatever"), request.Status("whatever"), true},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to))
		})
	}

	assert.True(t, request.StatusRejected.Terminal())
	assert.True(t, request.StatusInstalled.Terminal())
	assert.False(t, request.StatusPending.Terminal())
	assert.False(t, request.Status("whatever").Terminal())
}

func TestParseStatus(t *testing.T) {
	s, ok := request.ParseStatus(" approved ")
	assert.True(t, ok)
	assert.Equal(t, request.StatusApproved, s)

	_, ok = request.ParseStatus("DONE")
	assert.False(t, ok)
}

func TestDateJSON(t *testing.T) {
	d := request.NewDate(2024, time.January, 10)
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-10"`, string(out))

	var parsed request.Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-10"`), &parsed))
	assert.Equal(t, d, parsed)

	require.NoError(t, json.Unmarshal([]byte(`null`), &parsed))
	assert.True(t, parsed.IsZero())

	require.Error(t, json.Unmarshal([]byte(`"10/01/2024"`), &parsed))
	require.Error(t, json.Unmarshal([]byte(`20240110`), &parsed))

	out, err = json.Marshal(request.Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}
