package monitor

// Backend abstracts the OS-level watch primitive so the service can be driven
// by a fake in tests. Exactly one backend instance feeds a service's watch
// goroutine; the service owns the backend and closes it on shutdown.
type Backend interface {
	// Add begins watching dir. Idempotent for an already-watched directory.
	Add(dir string) error

	// Remove stops watching dir. Removing an unwatched directory is a no-op.
	Remove(dir string) error

	// Events returns the channel of raw path notifications.
	Events() <-chan PathEvent

	// Errors returns the channel of backend-level errors.
	Errors() <-chan error

	// Close releases all watches and closes both channels.
	Close() error
}
