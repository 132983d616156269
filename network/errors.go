package network

import "errors"

var (
	// ErrAlreadyRunning is returned when Start is called on a running monitor.
	ErrAlreadyRunning = errors.New("network monitor already running")
	// ErrNoMappedAddress is returned when a STUN response lacks a mapped address.
	ErrNoMappedAddress = errors.New("stun response carries no mapped address")
	// ErrNoServer is returned when a prober has no server configured.
	ErrNoServer = errors.New("no stun server configured")
)
