package room

import (
	"time"

	"aucroom/internal/pkg/errs"
)

// AuctionState is the lifecycle phase of a Dutch auction.
type AuctionState int

const (
	StatePending AuctionState = iota
	StateCountingDown
	StateActive
	StateAwaitingDialogue
	StateEnded
)

// String returns the wire representation of the state.
func (s AuctionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCountingDown:
		return "countingDown"
	case StateActive:
		return "active"
	case StateAwaitingDialogue:
		return "awaitingDialogue"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

const (
	// MinDecrementInterval bounds the price broadcast rate regardless of the
	// requested interval, protecting the server from overload.
	MinDecrementInterval = 100 * time.Millisecond

	// DefaultCountdown is the countdown length in seconds when the admin does
	// not specify one.
	DefaultCountdown = 3

	// WinScoreBonus is the score awarded to an auction winner.
	WinScoreBonus = 100
)

// Auction is one Dutch auction. Price starts at StartPrice and decays by
// DecrementAmount every DecrementInterval until the first bid or the floor.
// Timer handles are owned by the Room, which stores them here so transitions
// can cancel them.
type Auction struct {
	ID                int
	Item              string
	StartPrice        int
	CurrentPrice      int
	MinPrice          int
	DecrementAmount   int
	DecrementInterval time.Duration
	State             AuctionState
	WinnerID          string

	// Countdown bookkeeping while in StateCountingDown.
	countdownRemaining int
	countdownInitial   int

	// Scheduled work handles, canceled on state transitions.
	countdownTask *task
	startDelay    *task
	decayTask     *task
}

// Snapshot returns the history projection of the auction shared with clients.
func (a *Auction) Snapshot() AuctionSnapshot {
	return AuctionSnapshot{
		ID:           a.ID,
		Item:         a.Item,
		StartPrice:   a.StartPrice,
		CurrentPrice: a.CurrentPrice,
		MinPrice:     a.MinPrice,
		State:        a.State.String(),
		IsActive:     a.State == StateActive,
		Winner:       a.WinnerID,
	}
}

// TickPrice applies one decay step: the price drops by DecrementAmount but
// never below MinPrice. It returns the new price and whether the floor was
// reached, which ends the auction unsold.
func (a *Auction) TickPrice() (int, bool) {
	next := a.CurrentPrice - a.DecrementAmount
	if next <= a.MinPrice {
		a.CurrentPrice = a.MinPrice
		return a.CurrentPrice, true
	}

	a.CurrentPrice = next
	return a.CurrentPrice, false
}

// AcceptBid records the first bid as the winner and freezes the price. It
// returns false when the auction is not accepting bids, which is what the
// second of two near-simultaneous bidders observes.
func (a *Auction) AcceptBid(userID string) bool {
	if a.State != StateActive || a.WinnerID != "" {
		return false
	}

	a.WinnerID = userID
	a.State = StateAwaitingDialogue
	return true
}

// CancelTimers cancels any scheduled countdown, activation, or decay work.
// Safe to call repeatedly.
func (a *Auction) CancelTimers() {
	if a.countdownTask != nil {
		a.countdownTask.Cancel()
	}
	if a.startDelay != nil {
		a.startDelay.Cancel()
	}
	if a.decayTask != nil {
		a.decayTask.Cancel()
	}
}

// Engine holds every auction ever created this process lifetime, in creation
// order, and enforces the single-running-auction rule.
// Not safe for concurrent use; the Room serializes all access.
type Engine struct {
	auctions map[int]*Auction
	order    []int
	nextID   int

	defaultDecrementAmount   int
	defaultDecrementInterval time.Duration
}

// NewEngine creates an Engine with the configured auction defaults.
func NewEngine(defaultDecrementAmount int, defaultDecrementInterval time.Duration) *Engine {
	return &Engine{
		auctions:                 make(map[int]*Auction),
		nextID:                   1,
		defaultDecrementAmount:   defaultDecrementAmount,
		defaultDecrementInterval: defaultDecrementInterval,
	}
}

// Create validates the parameters and registers a new Pending auction.
// Decrement amount and interval fall back to the configured defaults, and the
// interval is floor-clamped to MinDecrementInterval.
func (e *Engine) Create(item string, startPrice, minPrice, decrementAmount int, decrementInterval time.Duration) (*Auction, *errs.CustomError) {
	if item == "" || startPrice <= 0 || minPrice < 0 || minPrice >= startPrice {
		return nil, errs.NewError(errs.ErrAuctionInvalid)
	}

	if decrementAmount <= 0 {
		decrementAmount = e.defaultDecrementAmount
	}
	if decrementInterval <= 0 {
		decrementInterval = e.defaultDecrementInterval
	}
	if decrementInterval < MinDecrementInterval {
		decrementInterval = MinDecrementInterval
	}

	auction := &Auction{
		ID:                e.nextID,
		Item:              item,
		StartPrice:        startPrice,
		CurrentPrice:      startPrice,
		MinPrice:          minPrice,
		DecrementAmount:   decrementAmount,
		DecrementInterval: decrementInterval,
		State:             StatePending,
	}

	e.nextID++
	e.auctions[auction.ID] = auction
	e.order = append(e.order, auction.ID)

	return auction, nil
}

// Get returns the auction with the given id, or nil.
func (e *Engine) Get(id int) *Auction {
	return e.auctions[id]
}

// Running returns the auction currently occupying the countdown, active, or
// awaiting-dialogue phase, or nil. At most one can exist.
func (e *Engine) Running() *Auction {
	for _, id := range e.order {
		a := e.auctions[id]
		switch a.State {
		case StateCountingDown, StateActive, StateAwaitingDialogue:
			return a
		}
	}
	return nil
}

// Active returns the auction currently in StateActive, or nil.
func (e *Engine) Active() *Auction {
	if a := e.Running(); a != nil && a.State == StateActive {
		return a
	}
	return nil
}

// Snapshot returns every auction in creation order.
func (e *Engine) Snapshot() []AuctionSnapshot {
	out := make([]AuctionSnapshot, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.auctions[id].Snapshot())
	}
	return out
}
