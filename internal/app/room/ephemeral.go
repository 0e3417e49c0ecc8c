package room

// SpecialEmoji is the privileged reaction reserved for the current crown
// holder and the admin. It triggers the money-rain effect on clients.
const SpecialEmoji = "🤑"

// Ephemeral tracks low-stakes, self-expiring shared state: the set of users
// currently hovering the bid control. Reactions carry their expiry metadata in
// the broadcast payload, so the server stores nothing for them.
// Not safe for concurrent use; the Room serializes all access.
type Ephemeral struct {
	hoverers map[string]struct{}
}

// NewEphemeral creates an empty tracker.
func NewEphemeral() *Ephemeral {
	return &Ephemeral{hoverers: make(map[string]struct{})}
}

// AddHover marks the user as hovering. Idempotent; returns the new cardinality.
func (e *Ephemeral) AddHover(userID string) int {
	e.hoverers[userID] = struct{}{}
	return len(e.hoverers)
}

// RemoveHover clears the user's hover mark. Idempotent; returns the new
// cardinality and whether anything changed.
func (e *Ephemeral) RemoveHover(userID string) (int, bool) {
	_, present := e.hoverers[userID]
	delete(e.hoverers, userID)
	return len(e.hoverers), present
}

// ClearHover empties the hover set, e.g. when an auction concludes.
func (e *Ephemeral) ClearHover() {
	clear(e.hoverers)
}

// HoverCount returns the current hover cardinality.
func (e *Ephemeral) HoverCount() int {
	return len(e.hoverers)
}

// ReactionAllowed reports whether the user may send the given emoji. Only the
// special emoji is restricted.
func ReactionAllowed(emoji string, hasCrown, isAdmin bool) bool {
	if emoji != SpecialEmoji {
		return true
	}
	return hasCrown || isAdmin
}
