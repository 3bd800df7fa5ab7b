package common

import "github.com/pkg/errors"

// ErrPrecondition is returned, wrapped with context, when a detection call
// receives inputs it cannot process: mismatched frames, or a configuration
// that would produce degenerate boxes.
var ErrPrecondition = errors.New("precondition violated")
