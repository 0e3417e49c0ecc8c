/*
This file defines the Room struct, the single process-lifetime session context.

The Room owns every piece of mutable state (registry, auctions, dialogue sessions,
chat store, ephemera) and is the sole entry point for inbound connection events and
timer callbacks. One coarse mutex gives every handler run-to-completion semantics,
which is what makes the at-most-one-accepted-bid guarantee hold without any
finer-grained coordination.
*/
package room

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"aucroom/internal/configs"
	"aucroom/internal/pkg/errs"
	"aucroom/internal/pkg/eventlog"
	"aucroom/internal/pkg/logx"
	"aucroom/internal/pkg/randx"
)

const (
	// MaxMessageLength is the maximum chat message length in characters.
	MaxMessageLength = 200

	// audioSyncLead is added to celebration timestamps so clients can line up
	// audio playback against a slightly-future wall clock.
	audioSyncLead = 100 * time.Millisecond

	// postZeroDelay is the pause between broadcasting the "0" countdown tick
	// and actually activating the auction, giving clients time to render it.
	postZeroDelay = time.Second

	// heartbeatInterval is the cadence of the serverTime broadcast.
	heartbeatInterval = time.Second

	// announcementPrefix marks an admin chat message as an announcement.
	announcementPrefix = "/"

	// joinHistoryLimit is how many recent chat messages a joiner receives.
	joinHistoryLimit = 100
)

// Envelope is the wire frame for inbound client events.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outboundEnvelope is the wire frame for server events.
type outboundEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// outlet is the transmit side of one attached connection. Send must never
// block; implementations drop frames when their queue is full.
type outlet interface {
	Send(data []byte)
}

// Room is the authoritative session: connection set, user registry, auction
// engine, winner-dialogue coordinator, chat store and ephemeral interaction
// state, plus the timers that drive them.
type Room struct {
	mu sync.Mutex

	cfg    *configs.AppConfig
	clock  clockwork.Clock
	events *eventlog.Recorder
	logger zerolog.Logger
	seoul  *time.Location

	conns map[string]outlet

	registry  *Registry
	engine    *Engine
	dialogues *Coordinator
	store     *MessageStore
	ephemeral *Ephemeral

	chatEnabled bool
}

// NewRoom constructs the Room from configuration. The clock is injected so
// every timer-driven state machine is testable against a fake clock.
func NewRoom(cfg *configs.AppConfig, clock clockwork.Clock, events *eventlog.Recorder) *Room {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		seoul = time.FixedZone("KST", 9*60*60)
	}

	return &Room{
		cfg:         cfg,
		clock:       clock,
		events:      events,
		logger:      logx.Logger().With().Str("component", "Room").Logger(),
		seoul:       seoul,
		conns:       make(map[string]outlet),
		registry:    NewRegistry(cfg.MaxUsers, cfg.AdminName),
		engine:      NewEngine(cfg.DefaultDecrementAmount, cfg.DefaultDecrementInterval),
		dialogues:   NewCoordinator(cfg.DialogueOptions, cfg.DialogueTimeout),
		store:       NewMessageStore(cfg.MessageLimit),
		ephemeral:   NewEphemeral(),
		chatEnabled: cfg.ChatEnabled,
	}
}

// Run drives the serverTime heartbeat until ctx is canceled. It blocks and is
// meant to be launched on its own goroutine from main.
func (r *Room) Run(ctx context.Context) {
	r.logger.Info().Msg("Room heartbeat started.")

	heartbeat := runEvery(r.clock, heartbeatInterval, r.broadcastServerTime)
	<-ctx.Done()
	heartbeat.Cancel()

	r.logger.Info().Msg("Room heartbeat stopped.")
}

// Attach registers a freshly upgraded connection and pushes the pre-join
// snapshot: occupancy, client config, and the current auction status.
func (r *Room) Attach(connectionID string, out outlet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[connectionID] = out

	r.sendTo(connectionID, EventUserCount, r.userCountPayload())
	r.sendTo(connectionID, EventConfigUpdate, r.configPayload())
	r.sendTo(connectionID, EventAuctionStatus, r.auctionStatusPayload())

	r.logger.Debug().Str("connection_id", connectionID).Msg("Connection attached.")
}

// Detach removes a connection and cleans up its membership and ephemeral
// state. Idempotent; in-flight auction and dialogue timers are global and keep
// running.
func (r *Room) Detach(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connectionID]; !ok {
		return
	}
	delete(r.conns, connectionID)

	if count, changed := r.ephemeral.RemoveHover(connectionID); changed {
		r.broadcast(EventBidHoverCount, HoverCountPayload{Count: count})
	}

	user := r.registry.Leave(connectionID)
	if user == nil {
		return
	}

	r.events.UserLeave(user.Name, connectionID)
	r.logger.Info().Str("connection_id", connectionID).Str("name", user.Name).Msg("User left.")

	r.broadcast(EventUserLeft, connectionID)
	r.broadcast(EventUserCount, r.userCountPayload())
}

// HandleEvent validates and dispatches one inbound client event. Unknown event
// types and malformed payloads are logged and ignored; rejected actions are
// surfaced to the originating connection only.
func (r *Room) HandleEvent(connectionID string, env Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch env.Event {
	case EventJoin:
		var req JoinRequest
		if r.decode(connectionID, env, &req) {
			r.handleJoin(connectionID, req)
		}
	case EventCreateAuction:
		var req CreateAuctionRequest
		if r.decode(connectionID, env, &req) {
			r.handleCreateAuction(connectionID, req)
		}
	case EventStartAuction:
		var req StartAuctionRequest
		if r.decode(connectionID, env, &req) {
			r.handleStartAuction(connectionID, req)
		}
	case EventBid:
		var req BidRequest
		if r.decode(connectionID, env, &req) {
			r.handleBid(connectionID, req)
		}
	case EventChatMessage:
		var req ChatRequest
		if r.decode(connectionID, env, &req) {
			r.handleChat(connectionID, req)
		}
	case EventToggleChat:
		r.handleToggleChat(connectionID)
	case EventMoveUser:
		var req MoveRequest
		if r.decode(connectionID, env, &req) {
			r.handleMove(connectionID, req)
		}
	case EventReaction:
		var req ReactionRequest
		if r.decode(connectionID, env, &req) {
			r.handleReaction(connectionID, req)
		}
	case EventBidHoverStart:
		r.handleHoverStart(connectionID)
	case EventBidHoverEnd:
		r.handleHoverEnd(connectionID)
	case EventSelectDialogue:
		var req SelectDialogueRequest
		if r.decode(connectionID, env, &req) {
			r.handleSelectDialogue(connectionID, req)
		}
	default:
		r.logger.Warn().Str("event", env.Event).Str("connection_id", connectionID).Msg("Client sent unsupported event type.")
	}
}

// decode unmarshals the envelope payload into dst. Malformed payloads never
// crash a handler; they are logged and the event is dropped.
func (r *Room) decode(connectionID string, env Envelope, dst any) bool {
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		r.logger.Warn().
			Err(err).
			Str("event", env.Event).
			Str("connection_id", connectionID).
			Msg("Client sent invalid payload.")
		return false
	}
	return true
}

// --- Membership ---

func (r *Room) handleJoin(connectionID string, req JoinRequest) {
	user, joinErr := r.registry.Join(connectionID, req.Name, req.Avatar, r.clock.Now())
	if joinErr != nil {
		r.sendTo(connectionID, EventJoinError, JoinErrorPayload{Message: joinErr.Message})
		return
	}

	r.events.UserJoin(user.Name, connectionID)

	isAdmin := r.registry.IsAdmin(user)
	r.logger.Info().
		Str("connection_id", connectionID).
		Str("name", user.Name).
		Bool("is_admin", isAdmin).
		Msg("User joined.")

	r.sendTo(connectionID, EventJoined, JoinedPayload{
		UserID:      connectionID,
		Users:       r.registry.Snapshot(),
		Auctions:    r.engine.Snapshot(),
		ChatEnabled: r.chatEnabled,
		IsAdmin:     isAdmin,
		Messages:    r.store.Recent(joinHistoryLimit),
		Config:      r.configPayload(),
	})

	r.broadcastExcept(connectionID, EventUserJoined, user.Snapshot())
	r.broadcast(EventUserCount, r.userCountPayload())
	r.broadcast(EventConfigUpdate, r.configPayload())
}

func (r *Room) handleMove(connectionID string, req MoveRequest) {
	user, ok := r.registry.Move(connectionID, req.X, req.Y)
	if !ok {
		return
	}

	// The origin already moved optimistically; only the others need to hear.
	r.broadcastExcept(connectionID, EventUserMoved, UserMovedPayload{
		UserID: connectionID,
		X:      user.X,
		Y:      user.Y,
	})
}

// --- Auctions ---

func (r *Room) handleCreateAuction(connectionID string, req CreateAuctionRequest) {
	user := r.registry.Get(connectionID)
	if user == nil {
		r.sendError(connectionID, errs.NewError(errs.ErrNotJoined))
		return
	}
	if !r.registry.IsAdmin(user) {
		r.sendError(connectionID, errs.NewError(errs.ErrNotAdmin))
		return
	}

	auction, createErr := r.engine.Create(
		strings.TrimSpace(req.Item),
		req.StartPrice,
		req.MinPrice,
		req.DecrementAmount,
		time.Duration(req.DecrementInterval)*time.Millisecond,
	)
	if createErr != nil {
		r.sendError(connectionID, createErr)
		return
	}

	r.events.AuctionCreated(user.Name, auction.Item, auction.StartPrice)

	r.broadcast(EventAuctionCreated, AuctionCreatedPayload{
		ID:                auction.ID,
		Item:              auction.Item,
		StartPrice:        auction.StartPrice,
		CurrentPrice:      auction.CurrentPrice,
		MinPrice:          auction.MinPrice,
		DecrementInterval: int(auction.DecrementInterval / time.Millisecond),
	})
}

func (r *Room) handleStartAuction(connectionID string, req StartAuctionRequest) {
	user := r.registry.Get(connectionID)
	if user == nil {
		r.sendError(connectionID, errs.NewError(errs.ErrNotJoined))
		return
	}
	if !r.registry.IsAdmin(user) {
		r.sendError(connectionID, errs.NewError(errs.ErrNotAdmin))
		return
	}

	auction := r.engine.Get(req.AuctionID)
	if auction == nil {
		r.sendError(connectionID, errs.NewError(errs.ErrAuctionNotFound))
		return
	}
	if auction.State != StatePending {
		r.sendError(connectionID, errs.NewError(errs.ErrAuctionNotPending))
		return
	}
	if running := r.engine.Running(); running != nil {
		r.sendError(connectionID, errs.NewError(errs.ErrAuctionInProgress))
		return
	}

	countdown := req.CountdownDuration
	if countdown <= 0 {
		countdown = DefaultCountdown
	}

	auction.State = StateCountingDown
	auction.countdownInitial = countdown
	auction.countdownRemaining = countdown

	// First tick goes out immediately; the rest arrive once per second.
	r.broadcast(EventAuctionCountdown, r.countdownPayload(auction))

	auction.countdownTask = runEvery(r.clock, time.Second, func() {
		r.onCountdownTick(auction)
	})
}

func (r *Room) onCountdownTick(auction *Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.State != StateCountingDown {
		return
	}

	auction.countdownRemaining--
	if auction.countdownRemaining < 0 {
		return
	}

	if auction.countdownRemaining == 0 {
		auction.countdownTask.Cancel()

		// Let clients render the "0" tick before the price starts moving.
		auction.startDelay = runAfter(r.clock, postZeroDelay, func() {
			r.onAuctionActivate(auction)
		})
	}

	r.broadcast(EventAuctionCountdown, r.countdownPayload(auction))
}

func (r *Room) onAuctionActivate(auction *Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.State != StateCountingDown {
		return
	}
	auction.State = StateActive

	r.events.AuctionStarted(auction.Item)
	r.logger.Info().Int("auction_id", auction.ID).Str("item", auction.Item).Msg("Auction activated.")

	auction.decayTask = runEvery(r.clock, auction.DecrementInterval, func() {
		r.onDecayTick(auction)
	})

	r.broadcast(EventAuctionStarted, AuctionStartedPayload{
		AuctionID: auction.ID,
		Timestamp: r.clock.Now().Add(audioSyncLead).UnixMilli(),
	})
}

func (r *Room) onDecayTick(auction *Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.State != StateActive {
		return
	}

	price, floorReached := auction.TickPrice()
	if floorReached {
		r.endUnsold(auction)
		return
	}

	r.broadcast(EventPriceUpdate, PriceUpdatePayload{
		AuctionID:    auction.ID,
		CurrentPrice: price,
	})
}

// endUnsold concludes an auction whose price decayed to the floor with no bid.
// Caller holds the room mutex.
func (r *Room) endUnsold(auction *Auction) {
	auction.CancelTimers()
	auction.State = StateEnded

	r.events.AuctionUnsold(auction.Item)
	r.logger.Info().Int("auction_id", auction.ID).Str("item", auction.Item).Msg("Auction ended unsold.")

	r.clearHover()

	r.broadcast(EventAuctionEnded, AuctionEndedPayload{
		AuctionID:  auction.ID,
		Winner:     nil,
		FinalPrice: nil,
	})
}

func (r *Room) handleBid(connectionID string, req BidRequest) {
	user := r.registry.Get(connectionID)
	if user == nil {
		r.sendError(connectionID, errs.NewError(errs.ErrNotJoined))
		return
	}

	auction := r.engine.Get(req.AuctionID)
	if auction == nil {
		r.sendError(connectionID, errs.NewError(errs.ErrAuctionNotFound))
		return
	}

	if !auction.AcceptBid(connectionID) {
		// What the second of two near-simultaneous bidders sees.
		r.sendError(connectionID, errs.NewError(errs.ErrAuctionNotActive))
		return
	}

	auction.CancelTimers()

	r.registry.AwardWin(connectionID, WinScoreBonus)
	r.events.BidPlaced(user.Name, auction.Item, auction.CurrentPrice)
	r.logger.Info().
		Int("auction_id", auction.ID).
		Str("winner", user.Name).
		Int("price", auction.CurrentPrice).
		Msg("Bid accepted.")

	// Crown and score moved; everyone gets the fresh roster.
	r.broadcast(EventUserUpdate, r.registry.Snapshot())

	r.clearHover()

	now := r.clock.Now()
	session := r.dialogues.Start(
		auction.ID,
		connectionID,
		user.Name,
		auction.CurrentPrice,
		now,
		now.Add(audioSyncLead).UnixMilli(),
	)

	r.broadcast(EventWinnerDialogueStart, DialogueStartPayload{
		SessionID:       session.ID,
		AuctionID:       auction.ID,
		WinnerID:        connectionID,
		WinnerName:      user.Name,
		Price:           auction.CurrentPrice,
		DialogueOptions: session.Options,
		TimeLimit:       r.dialogues.TimeLimitSeconds(),
	})

	session.timeoutTask = runAfter(r.clock, session.Timeout, func() {
		r.onDialogueTimeout(session)
	})
}

// --- Winner dialogue ---

func (r *Room) handleSelectDialogue(connectionID string, req SelectDialogueRequest) {
	session := r.dialogues.Get(req.SessionID)

	selected, selectErr := r.dialogues.Select(session, connectionID, req.SelectedIndex)
	if selectErr != nil {
		r.sendError(connectionID, selectErr)
		return
	}

	session.timeoutTask.Cancel()

	r.broadcast(EventWinnerDialogueSelect, DialogueSelectedPayload{
		SessionID:      session.ID,
		SelectedOption: selected,
		WinnerID:       session.WinnerID,
		WinnerName:     session.WinnerName,
	})

	// The chosen line stays visible for the remainder of the original window,
	// so the total time is the full deadline however fast the winner picked.
	remaining := r.dialogues.Remaining(session, r.clock.Now())
	session.celebrationTask = runAfter(r.clock, remaining, func() {
		r.onCelebrationDue(session)
	})
}

func (r *Room) onDialogueTimeout(session *DialogueSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A selection cancels this timer; if the cancel raced the firing, the
	// selection path owns the celebration.
	if session.Selected != "" {
		return
	}

	r.celebrate(session)
}

func (r *Room) onCelebrationDue(session *DialogueSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.celebrate(session)
}

// celebrate resolves the dialogue session exactly once, emitting the final
// celebratory result and moving the auction to its terminal state.
// Caller holds the room mutex.
func (r *Room) celebrate(session *DialogueSession) {
	if !r.dialogues.Resolve(session) {
		return
	}

	r.broadcast(EventBidAccepted, BidAcceptedPayload{
		AuctionID:  session.AuctionID,
		Winner:     session.WinnerID,
		WinnerName: session.WinnerName,
		Price:      session.Price,
		Timestamp:  session.Timestamp,
	})

	auction := r.engine.Get(session.AuctionID)
	if auction != nil && auction.State == StateAwaitingDialogue {
		auction.State = StateEnded

		winner := session.WinnerID
		price := session.Price
		r.broadcast(EventAuctionEnded, AuctionEndedPayload{
			AuctionID:  auction.ID,
			Winner:     &winner,
			FinalPrice: &price,
		})

		r.events.AuctionEnded(auction.Item, session.WinnerName, session.Price)
	}
	r.logger.Info().
		Int("auction_id", session.AuctionID).
		Str("winner", session.WinnerName).
		Msg("Winner dialogue resolved.")
}

// --- Chat ---

func (r *Room) handleChat(connectionID string, req ChatRequest) {
	user := r.registry.Get(connectionID)
	if user == nil {
		r.sendError(connectionID, errs.NewError(errs.ErrNotJoined))
		return
	}

	isAdmin := r.registry.IsAdmin(user)
	if !r.chatEnabled && !isAdmin {
		r.sendTo(connectionID, EventChatDisabled, ChatDisabledPayload{
			Message: "Chat is currently disabled by admin",
		})
		return
	}

	if len([]rune(req.Text)) > MaxMessageLength {
		r.sendError(connectionID, errs.NewError(errs.ErrMessageTooLong, MaxMessageLength))
		return
	}

	// Admin announcements bypass the store and go out as a distinct event.
	if isAdmin && strings.HasPrefix(req.Text, announcementPrefix) {
		announcement := strings.TrimSpace(strings.TrimPrefix(req.Text, announcementPrefix))
		if announcement == "" {
			return
		}

		r.events.Announcement(user.Name, announcement)

		r.broadcast(EventAnnouncement, AnnouncementPayload{
			Message:   announcement,
			From:      user.Name,
			Timestamp: r.clock.Now(),
		})
		return
	}

	msg := ChatMessage{
		ID:        randx.MessageID(),
		UserID:    connectionID,
		UserName:  user.Name,
		Text:      req.Text,
		Timestamp: r.clock.Now(),
	}

	r.store.Add(msg)
	r.events.ChatMessage(user.Name, req.Text)

	r.broadcast(EventChatBroadcast, msg)
}

func (r *Room) handleToggleChat(connectionID string) {
	user := r.registry.Get(connectionID)
	if user == nil {
		r.sendError(connectionID, errs.NewError(errs.ErrNotJoined))
		return
	}
	if !r.registry.IsAdmin(user) {
		r.sendError(connectionID, errs.NewError(errs.ErrNotAdmin))
		return
	}

	r.chatEnabled = !r.chatEnabled

	message := "Chat disabled by admin"
	if r.chatEnabled {
		message = "Chat enabled by admin"
	}

	r.broadcast(EventChatToggled, ChatToggledPayload{
		Enabled: r.chatEnabled,
		Message: message,
	})
}

// --- Ephemera ---

func (r *Room) handleHoverStart(connectionID string) {
	if r.registry.Get(connectionID) == nil {
		return
	}

	count := r.ephemeral.AddHover(connectionID)
	r.broadcast(EventBidHoverCount, HoverCountPayload{Count: count})
}

func (r *Room) handleHoverEnd(connectionID string) {
	count, _ := r.ephemeral.RemoveHover(connectionID)
	r.broadcast(EventBidHoverCount, HoverCountPayload{Count: count})
}

// clearHover empties the hover set and tells every client.
// Caller holds the room mutex.
func (r *Room) clearHover() {
	r.ephemeral.ClearHover()
	r.broadcast(EventBidHoverCount, HoverCountPayload{Count: 0})
}

func (r *Room) handleReaction(connectionID string, req ReactionRequest) {
	user := r.registry.Get(connectionID)
	if user == nil {
		return
	}

	isAdmin := r.registry.IsAdmin(user)
	if !ReactionAllowed(req.Emoji, user.HasCrown, isAdmin) {
		r.sendError(connectionID, errs.NewError(errs.ErrReactionNotAllowed))
		return
	}

	isSpecial := req.Emoji == SpecialEmoji
	timestamp := r.clock.Now().UnixMilli()

	var soundTimestamp *int64
	if isSpecial {
		soundTimestamp = &timestamp
	}

	r.broadcast(EventUserReaction, ReactionPayload{
		UserID:         connectionID,
		UserName:       user.Name,
		Emoji:          req.Emoji,
		Timestamp:      timestamp,
		IsSpecial:      isSpecial,
		SoundTimestamp: soundTimestamp,
	})
}

// --- Heartbeat and snapshots ---

func (r *Room) broadcastServerTime() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	r.broadcast(EventServerTime, ServerTimePayload{
		Timestamp: now.UnixMilli(),
		Formatted: now.In(r.seoul).Format("2006. 01. 02. 15:04:05"),
	})
}

// IsFull reports whether the room is at its user capacity. Used by the
// websocket handler to reject connections before upgrading.
func (r *Room) IsFull() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.registry.Count() >= r.registry.Capacity()
}

// Status returns the read-only snapshot served by the HTTP status endpoint.
func (r *Room) Status() (UserCountPayload, bool, AuctionStatusPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.userCountPayload(), r.chatEnabled, r.auctionStatusPayload()
}

func (r *Room) userCountPayload() UserCountPayload {
	return UserCountPayload{
		Current: r.registry.Count(),
		Max:     r.registry.Capacity(),
	}
}

func (r *Room) configPayload() ConfigPayload {
	return ConfigPayload{
		Movement: MovementConfig{
			AnimationDuration: r.cfg.MovementAnimationDuration,
			EaseType:          r.cfg.MovementEaseType,
		},
	}
}

func (r *Room) auctionStatusPayload() AuctionStatusPayload {
	active := r.engine.Active()
	if active == nil {
		return AuctionStatusPayload{HasActiveAuction: false, ActiveAuction: nil}
	}

	return AuctionStatusPayload{
		HasActiveAuction: true,
		ActiveAuction: &ActiveAuctionStatus{
			ID:           active.ID,
			Item:         active.Item,
			CurrentPrice: active.CurrentPrice,
		},
	}
}

func (r *Room) countdownPayload(auction *Auction) CountdownPayload {
	return CountdownPayload{
		Countdown:        auction.countdownRemaining,
		AuctionID:        auction.ID,
		InitialCountdown: auction.countdownInitial,
		AuctionData: CountdownItem{
			Item:          auction.Item,
			StartingPrice: auction.CurrentPrice,
		},
	}
}

// --- Emission ---

// broadcast sends an event to every attached connection. Emission happens
// while the caller holds the room mutex, so fan-out order always matches
// mutation order; a full client queue drops the frame for that client only.
func (r *Room) broadcast(event string, payload any) {
	data, ok := r.marshal(event, payload)
	if !ok {
		return
	}

	for _, out := range r.conns {
		out.Send(data)
	}
}

// broadcastExcept sends an event to everyone but the named connection.
func (r *Room) broadcastExcept(connectionID, event string, payload any) {
	data, ok := r.marshal(event, payload)
	if !ok {
		return
	}

	for id, out := range r.conns {
		if id != connectionID {
			out.Send(data)
		}
	}
}

// sendTo sends an event to a single connection, if still attached.
func (r *Room) sendTo(connectionID, event string, payload any) {
	out, ok := r.conns[connectionID]
	if !ok {
		return
	}

	data, ok := r.marshal(event, payload)
	if !ok {
		return
	}

	out.Send(data)
}

// sendError surfaces a rejected action to the originating connection only.
func (r *Room) sendError(connectionID string, customErr *errs.CustomError) {
	r.sendTo(connectionID, EventError, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}

func (r *Room) marshal(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(outboundEnvelope{Event: event, Payload: payload})
	if err != nil {
		r.logger.Error().Err(err).Str("event", event).Msg("Error marshaling event for broadcast.")
		return nil, false
	}
	return data, true
}
