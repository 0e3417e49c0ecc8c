package room

import (
	"fmt"
	"time"

	"aucroom/internal/pkg/errs"
)

// DialogueSession is one winner-dialogue negotiation: after a bid is accepted
// the winner gets a short window to pick a celebratory line. Sessions are not
// owned by connection lifetime; a disconnected winner still times out normally.
type DialogueSession struct {
	ID         string
	AuctionID  int
	WinnerID   string
	WinnerName string
	Price      int
	Options    []string
	Timeout    time.Duration
	CreatedAt  time.Time

	// Timestamp is the celebration timestamp (milliseconds, with audio-sync
	// lead) carried by the final bidAccepted broadcast.
	Timestamp int64

	// Selected is the chosen line, empty until the winner picks one.
	Selected string

	// Scheduled work handles, owned by the Room.
	timeoutTask     *task
	celebrationTask *task
}

// Coordinator tracks unresolved winner-dialogue sessions and guarantees each
// resolves exactly once. Not safe for concurrent use; the Room serializes all
// access.
type Coordinator struct {
	sessions map[string]*DialogueSession
	options  []string
	timeout  time.Duration
}

// NewCoordinator creates a Coordinator with the configured dialogue options
// and selection deadline.
func NewCoordinator(options []string, timeout time.Duration) *Coordinator {
	return &Coordinator{
		sessions: make(map[string]*DialogueSession),
		options:  options,
		timeout:  timeout,
	}
}

// Start creates the session for a freshly accepted bid. The timestamp argument
// is the celebration timestamp forwarded to clients at resolution.
func (c *Coordinator) Start(auctionID int, winnerID, winnerName string, price int, now time.Time, timestamp int64) *DialogueSession {
	session := &DialogueSession{
		ID:         fmt.Sprintf("dialogue_%d_%d", auctionID, now.UnixMilli()),
		AuctionID:  auctionID,
		WinnerID:   winnerID,
		WinnerName: winnerName,
		Price:      price,
		Options:    c.options,
		Timeout:    c.timeout,
		CreatedAt:  now,
		Timestamp:  timestamp,
	}

	c.sessions[session.ID] = session
	return session
}

// Get returns the unresolved session with the given id, or nil.
func (c *Coordinator) Get(sessionID string) *DialogueSession {
	return c.sessions[sessionID]
}

// TimeLimitSeconds is the selection window in whole seconds, rounded down,
// as shown to clients.
func (c *Coordinator) TimeLimitSeconds() int {
	return int(c.timeout / time.Second)
}

// Select records the winner's choice. It rejects unknown sessions, non-winner
// requesters, repeated selections, and out-of-range option indexes.
func (c *Coordinator) Select(session *DialogueSession, requesterID string, optionIndex int) (string, *errs.CustomError) {
	if session == nil || session.WinnerID != requesterID || session.Selected != "" {
		return "", errs.NewError(errs.ErrDialogueInvalid)
	}
	if optionIndex < 0 || optionIndex >= len(session.Options) {
		return "", errs.NewError(errs.ErrDialogueInvalid)
	}

	session.Selected = session.Options[optionIndex]
	return session.Selected, nil
}

// Remaining is how much of the selection window is left at now, clamped at
// zero so clock skew can never produce a negative delay.
func (c *Coordinator) Remaining(session *DialogueSession, now time.Time) time.Duration {
	remaining := session.Timeout - now.Sub(session.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Resolve marks the session resolved and discards it. It returns true exactly
// once per session; a racing timeout and late selection cannot both win.
func (c *Coordinator) Resolve(session *DialogueSession) bool {
	if session == nil {
		return false
	}
	if _, ok := c.sessions[session.ID]; !ok {
		return false
	}

	delete(c.sessions, session.ID)

	if session.timeoutTask != nil {
		session.timeoutTask.Cancel()
	}
	if session.celebrationTask != nil {
		session.celebrationTask.Cancel()
	}

	return true
}
