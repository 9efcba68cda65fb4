// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
// Run blocks until the context is cancelled; the aggregate handles the
// goroutine plumbing.
type Worker interface {
	Run(ctx context.Context)
}
