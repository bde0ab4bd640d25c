package service

import (
	"errors"
)

// Sentinel error kinds for pipeline failures. These allow errors.Is/As from
// callers; the HTTP layer maps them onto status codes.
var (
	// ErrEncoding marks a failure to embed the request text. The pipeline
	// cannot proceed without a query vector.
	ErrEncoding = errors.New("request encoding failed")

	// ErrRetrieval marks a vector index failure.
	ErrRetrieval = errors.New("candidate retrieval failed")

	// ErrDatabase marks a wholesale metrics store outage. Individual
	// missing rows are not errors and fall back to neutral defaults.
	ErrDatabase = errors.New("player metrics lookup failed")
)
