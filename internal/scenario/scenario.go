// Package scenario runs the demo workloads behind the command line tool.
// Each scenario exercises one family of primitives and checks the
// property it is meant to guarantee.
package scenario

import "errors"

var ErrMismatch = errors.New("scenario: result mismatch")
