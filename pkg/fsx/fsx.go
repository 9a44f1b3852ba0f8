// Package fsx abstracts dataset storage. Jobs reference datasets by locator
// (a path or an s3:// URL); the service only ever probes them, it never
// reads training data itself.
package fsx

import "context"

// Storage answers whether a dataset locator points at something real.
type Storage interface {
	Exists(ctx context.Context, locator string) (bool, error)
}
