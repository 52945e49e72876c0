package domain

// Owned is implemented by every record scoped to a single user.
type Owned interface {
	OwnerID() string
}

// Entity names a tracked table. The set is closed; see TrackedEntities.
type Entity string

const (
	EntityTodos    Entity = "todos"
	EntityThreads  Entity = "threads"
	EntityMessages Entity = "messages"
)

// TrackedEntities lists the user-owned tables in reporting order.
var TrackedEntities = []Entity{EntityTodos, EntityThreads, EntityMessages}

// Models returns every persisted model, for migrations.
func Models() []any {
	return []any{&User{}, &Todo{}, &Thread{}, &Message{}}
}
