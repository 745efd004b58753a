package client

import "errors"

var (
	errNoServicesProvided = errors.New("no client services provided")
)
