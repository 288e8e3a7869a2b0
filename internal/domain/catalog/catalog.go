// Package catalog holds the booking service's read-only view of users and items.
// Both are owned by the catalog service and replicated here from catalog events.
package catalog

// User is a member of the sharing platform.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Item is a thing a user offers for sharing.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"owner_id"`
	RequestID   *int64 `json:"request_id,omitempty"`
}

// IsOwnedBy reports whether userID owns the item.
func (i Item) IsOwnedBy(userID int64) bool {
	return i.OwnerID == userID
}
