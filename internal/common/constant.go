package common

// Keys under which durable state is kept in the persistent store.
const (
	// AuthTokenKey holds the opaque session token; present iff a session exists.
	AuthTokenKey = "authToken"
	// UserKey holds the JSON-encoded user of the current session.
	UserKey = "user"
	// TasksKey holds the JSON-encoded task collection.
	TasksKey = "tasks"
)

// SessionKeys lists every key removed on logout.
var SessionKeys = []string{AuthTokenKey, UserKey, TasksKey}
