package room

import (
	"strings"
	"time"

	"aucroom/internal/pkg/errs"
	"aucroom/internal/pkg/randx"
)

const (
	// MaxNameLength is the maximum display name length in characters.
	MaxNameLength = 20

	// Movement clamp bounds (percent of the room area).
	moveMin = 5
	moveMax = 90
)

// User is the authoritative record for one joined connection. It is owned
// exclusively by the Registry; other components read and write through it and
// never hold a separate copy.
type User struct {
	ID       string
	Name     string
	Avatar   string
	X        float64
	Y        float64
	Score    int
	HasCrown bool
	JoinedAt time.Time
}

// Snapshot returns the roster projection of the user shared with clients.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:       u.ID,
		Name:     u.Name,
		Avatar:   u.Avatar,
		X:        u.X,
		Y:        u.Y,
		HasCrown: u.HasCrown,
	}
}

// Registry is the authoritative mapping of connection identity to user record.
// It enforces the capacity ceiling and case-insensitive display-name uniqueness.
// It is not safe for concurrent use; the Room serializes all access.
type Registry struct {
	users     map[string]*User
	order     []string // connection ids in join order, for stable rosters
	capacity  int
	adminName string
}

// NewRegistry creates a Registry with the given capacity ceiling and the
// configured admin display name.
func NewRegistry(capacity int, adminName string) *Registry {
	return &Registry{
		users:     make(map[string]*User),
		capacity:  capacity,
		adminName: adminName,
	}
}

// Join admits a new user for connectionID. It rejects when the room is at
// capacity, when the name is empty or too long, or when the name collides
// case-insensitively with an existing user. On success the user spawns at a
// random position with score 0 and no crown.
func (r *Registry) Join(connectionID, name, avatar string, now time.Time) (*User, *errs.CustomError) {
	if len(r.users) >= r.capacity {
		return nil, errs.NewError(errs.ErrRoomFull, r.capacity)
	}

	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxNameLength {
		return nil, errs.NewError(errs.ErrNameInvalid, MaxNameLength)
	}

	lower := strings.ToLower(name)
	for _, u := range r.users {
		if strings.ToLower(u.Name) == lower {
			return nil, errs.NewError(errs.ErrNameTaken)
		}
	}

	if avatar == "" {
		choice, err := randx.AvatarChoice()
		if err != nil {
			choice = "avatar1"
		}
		avatar = choice
	}

	x, y, err := randx.SpawnPosition()
	if err != nil {
		// Center of the room as a last resort; crypto/rand failing is not
		// worth rejecting the join over.
		x, y = 50, 50
	}

	user := &User{
		ID:       connectionID,
		Name:     name,
		Avatar:   avatar,
		X:        x,
		Y:        y,
		JoinedAt: now,
	}

	r.users[connectionID] = user
	r.order = append(r.order, connectionID)

	return user, nil
}

// Leave removes the user for connectionID, returning the removed record or
// nil if none existed. Idempotent.
func (r *Registry) Leave(connectionID string) *User {
	user, ok := r.users[connectionID]
	if !ok {
		return nil
	}

	delete(r.users, connectionID)
	for i, id := range r.order {
		if id == connectionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return user
}

// Get returns the user for connectionID, or nil.
func (r *Registry) Get(connectionID string) *User {
	return r.users[connectionID]
}

// Move clamps (x, y) into the movement bounds and updates the user's position.
// The second return value reports whether the user exists.
func (r *Registry) Move(connectionID string, x, y float64) (*User, bool) {
	user, ok := r.users[connectionID]
	if !ok {
		return nil, false
	}

	user.X = clamp(x, moveMin, moveMax)
	user.Y = clamp(y, moveMin, moveMax)

	return user, true
}

// IsAdmin reports whether the user's display name exactly matches the
// configured admin name.
func (r *Registry) IsAdmin(u *User) bool {
	return u != nil && u.Name == r.adminName
}

// AwardWin credits the auction win: the score bonus and the crown, which moves
// off any previous holder.
func (r *Registry) AwardWin(winnerID string, scoreBonus int) *User {
	winner, ok := r.users[winnerID]
	if !ok {
		return nil
	}

	for _, u := range r.users {
		u.HasCrown = false
	}

	winner.Score += scoreBonus
	winner.HasCrown = true

	return winner
}

// Count returns the current occupancy.
func (r *Registry) Count() int {
	return len(r.users)
}

// Capacity returns the configured capacity ceiling.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Snapshot returns the full roster in join order.
func (r *Registry) Snapshot() []UserSnapshot {
	out := make([]UserSnapshot, 0, len(r.users))
	for _, id := range r.order {
		if u, ok := r.users[id]; ok {
			out = append(out, u.Snapshot())
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
