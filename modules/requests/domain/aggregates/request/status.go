package request

import "strings"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusInstalled Status = "INSTALLED"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusInstalled},
}

// ParseStatus resolves a status name, case-insensitively.
func ParseStatus(v string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	return s, s.Valid()
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusInstalled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Re-setting the current status is allowed. A status outside the known set,
// left by permissive updates, may only be reset to PENDING.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	if !s.Valid() {
		return next == StatusPending
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func (s Status) String() string { return string(s) }
