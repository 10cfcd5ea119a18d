// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

// Worker is the interface that must be implemented by any background worker,
// such as the periodic catch-up sync. It defines a single Run method that
// starts the worker's execution.
//
// Implementations are expected to return quickly and run their work in
// goroutines they own; blocking Run blocks every worker queued after it.
type Worker interface {
	Run()
}
