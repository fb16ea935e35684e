package domain

// Broadcast event types, one per mutation.
const (
	ListCreated    = "list:created"
	ListUpdated    = "list:updated"
	ListDeleted    = "list:deleted"
	CardCreated    = "card:created"
	CardUpdated    = "card:updated"
	CardDeleted    = "card:deleted"
	CommentCreated = "comment:created"
)

// Event is a state-change notification fanned out to every connected client,
// including the one that performed the mutation. The payload is the canonical
// post-mutation entity, or the entity id for deletes.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Publisher delivers events to connected clients. Delivery is fire-and-forget:
// implementations must never block the mutation path.
type Publisher interface {
	Publish(ev Event)
}
