package catalog

// TopicEvents is the topic the catalog service publishes user and item changes to.
const TopicEvents = "catalog.events"

// Catalog event types.
const (
	EventUserUpserted = "catalog.user.upserted"
	EventUserDeleted  = "catalog.user.deleted"
	EventItemUpserted = "catalog.item.upserted"
	EventItemDeleted  = "catalog.item.deleted"
)

// UserUpsertedEvent carries the full user record after a create or update.
type UserUpsertedEvent struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// ItemUpsertedEvent carries the full item record after a create or update.
type ItemUpsertedEvent struct {
	ItemID      int64  `json:"item_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"owner_id"`
	RequestID   *int64 `json:"request_id,omitempty"`
}

// DeletedEvent identifies a removed user or item.
type DeletedEvent struct {
	ID int64 `json:"id"`
}
