package discovery

import "errors"

var (
	// ErrNoInstances indicates no live instances are registered for a service.
	ErrNoInstances = errors.New("discovery: no instances available")

	// ErrLeaseExpired indicates the registry no longer holds the instance lease.
	ErrLeaseExpired = errors.New("discovery: lease expired")
)
