package service

import "errors"

var (
	ErrAlreadyRunning = errors.New("auto bidder is already running")
	ErrNotRunning     = errors.New("auto bidder is not running")
	ErrNoTargets      = errors.New("no targets selected")
	ErrLeaseHeld      = errors.New("another bidder holds the account lease")
	ErrInvalidRequest = errors.New("invalid request")
)
