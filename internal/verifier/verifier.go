// Package verifier abstracts the face comparison backends. All backends take
// two images materialized on disk and answer whether they show the same
// person, together with the measured distance and the decision threshold.
package verifier

import (
	"context"
	"errors"
)

// Result is the outcome of comparing a live image against a reference image.
type Result struct {
	Matched   bool
	Distance  float64
	Threshold float64
}

// Detection failures are ordinary outcomes of the pipeline, not faults: the
// handlers map them to a matched:false response with a message.
var (
	ErrNoFaceInLive      = errors.New("no face detected in live image")
	ErrNoFaceInReference = errors.New("no face detected in reference image")
)

// Verifier compares two face images stored on disk.
type Verifier interface {
	// Verify returns a Result, ErrNoFaceInLive/ErrNoFaceInReference when
	// detection fails, or any other error for backend faults.
	Verify(ctx context.Context, livePath, referencePath string) (*Result, error)
	// Name identifies the backend in logs and persisted records.
	Name() string
}
