package session

import "github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"

// Policy bounds how many sessions one principal may hold at once.
// MaxConcurrent 0 means unbounded.
type Policy struct {
	MaxConcurrent  int
	RejectOnExceed bool
}

// PolicyFor maps a role to its admission policy. Admins get a single session
// and a second login is refused; staff users are unbounded.
func PolicyFor(role types.Role) Policy {
	switch role {
	case types.RoleAdmin:
		return Policy{MaxConcurrent: 1, RejectOnExceed: true}
	default:
		return Policy{}
	}
}
