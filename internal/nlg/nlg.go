// Package nlg defines the port for the external text-generation
// provider the assistant consults before falling back to canned
// responses.
package nlg

import (
	"context"
	"errors"
)

var (
	ErrTimeout     = errors.New("generation timed out")
	ErrRateLimited = errors.New("generation rate limited")
	ErrUnavailable = errors.New("generation unavailable")
)

// Generator produces one response for one prompt. Implementations must
// honor ctx cancellation; callers bound every invocation with a
// deadline and fall back when it fails.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
