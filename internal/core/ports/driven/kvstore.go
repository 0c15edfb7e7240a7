package driven

// KeyValueStore is durable local key-value storage for settings and
// conversation history. Values are JSON documents encoded as strings.
// The store is eventually consistent and offers no transactions across
// keys.
type KeyValueStore interface {
	// Get returns the values for the requested keys. Missing keys are
	// simply absent from the result map.
	Get(keys ...string) (map[string]string, error)

	// Set stores every entry in the map. Each key is written
	// independently; a failure may leave a subset written.
	Set(values map[string]string) error
}

// KeyValueWatcher is an optional extension for stores whose backing
// file can be edited by an outside collaborator (the settings UI).
type KeyValueWatcher interface {
	// Watch invokes onChange after the underlying storage changes.
	// Returns a stop function.
	Watch(onChange func()) (stop func(), err error)
}
