package room

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aucroom/internal/configs"
	"aucroom/internal/pkg/eventlog"
)

const (
	waitFor = 2 * time.Second
	tick    = 2 * time.Millisecond
)

// fakeOutlet records every frame a connection would receive. Send may be
// called from timer goroutines, so access is synchronized.
type fakeOutlet struct {
	mu     sync.Mutex
	frames []outboundFrame
}

type outboundFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (f *fakeOutlet) Send(data []byte) {
	var frame outboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return
	}

	f.mu.Lock()
	f.frames = append(f.frames, frame)
	f.mu.Unlock()
}

func (f *fakeOutlet) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, frame := range f.frames {
		if frame.Event == event {
			n++
		}
	}
	return n
}

func (f *fakeOutlet) last(event string) (json.RawMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.frames) - 1; i >= 0; i-- {
		if f.frames[i].Event == event {
			return f.frames[i].Payload, true
		}
	}
	return nil, false
}

func (f *fakeOutlet) decodeLast(t *testing.T, event string, dst any) {
	t.Helper()

	payload, ok := f.last(event)
	require.True(t, ok, "no %q frame recorded", event)
	require.NoError(t, json.Unmarshal(payload, dst))
}

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Environment:               "development",
		Port:                      3500,
		AdminName:                 "Kane Lee",
		MaxUsers:                  150,
		ChatEnabled:               true,
		MessageLimit:              50000,
		DefaultDecrementAmount:    10,
		DefaultDecrementInterval:  time.Second,
		DialogueOptions:           []string{"great deal!", "needed this!", "fun auction!", "see you next time!"},
		DialogueTimeout:           3 * time.Second,
		MovementAnimationDuration: 0.5,
		MovementEaseType:          "power2.out",
	}
}

func newTestRoom(cfg *configs.AppConfig) (*Room, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewRoom(cfg, clock, eventlog.New("")), clock
}

func send(r *Room, connectionID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	r.HandleEvent(connectionID, Envelope{Event: event, Payload: data})
}

func join(t *testing.T, r *Room, connectionID, name string) *fakeOutlet {
	t.Helper()

	out := &fakeOutlet{}
	r.Attach(connectionID, out)
	send(r, connectionID, EventJoin, JoinRequest{Name: name})

	require.Equal(t, 1, out.count(EventJoined), "join failed for %s", name)
	return out
}

// advanceUntil advances the fake clock one step and waits until the outlet has
// received at least n frames of the given event.
func advanceUntil(t *testing.T, clock *clockwork.FakeClock, step time.Duration, out *fakeOutlet, event string, n int) {
	t.Helper()

	clock.Advance(step)
	require.Eventually(t, func() bool {
		return out.count(event) >= n
	}, waitFor, tick, "expected %d %q frames, got %d", n, event, out.count(event))
}

func lastErrorCode(t *testing.T, out *fakeOutlet) int {
	t.Helper()

	var payload ErrorPayload
	out.decodeLast(t, EventError, &payload)
	return payload.Code
}

func TestRoom_AttachSendsSnapshot(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	out := &fakeOutlet{}
	r.Attach("conn-1", out)

	var count UserCountPayload
	out.decodeLast(t, EventUserCount, &count)
	assert.Equal(t, 0, count.Current)
	assert.Equal(t, 150, count.Max)

	var cfg ConfigPayload
	out.decodeLast(t, EventConfigUpdate, &cfg)
	assert.Equal(t, 0.5, cfg.Movement.AnimationDuration)
	assert.Equal(t, "power2.out", cfg.Movement.EaseType)

	var status AuctionStatusPayload
	out.decodeLast(t, EventAuctionStatus, &status)
	assert.False(t, status.HasActiveAuction)
	assert.Nil(t, status.ActiveAuction)
}

func TestRoom_JoinAndRosterBroadcasts(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")

	var joined JoinedPayload
	alice.decodeLast(t, EventJoined, &joined)
	assert.Equal(t, "conn-1", joined.UserID)
	assert.Len(t, joined.Users, 1)
	assert.False(t, joined.IsAdmin)
	assert.True(t, joined.ChatEnabled)
	assert.Empty(t, joined.Messages)

	admin := join(t, r, "conn-admin", "Kane Lee")
	admin.decodeLast(t, EventJoined, &joined)
	assert.True(t, joined.IsAdmin)
	assert.Len(t, joined.Users, 2)

	// The earlier member hears about the newcomer but not about itself.
	assert.Equal(t, 1, alice.count(EventUserJoined))
	assert.Equal(t, 0, admin.count(EventUserJoined))

	var count UserCountPayload
	alice.decodeLast(t, EventUserCount, &count)
	assert.Equal(t, 2, count.Current)
}

func TestRoom_JoinRejectionsGoToOriginOnly(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")

	dup := &fakeOutlet{}
	r.Attach("conn-2", dup)
	send(r, "conn-2", EventJoin, JoinRequest{Name: "ALICE"})

	assert.Equal(t, 1, dup.count(EventJoinError))
	assert.Equal(t, 0, dup.count(EventJoined))
	assert.Equal(t, 0, alice.count(EventJoinError))

	// The rejected connection stays attached and can retry.
	send(r, "conn-2", EventJoin, JoinRequest{Name: "bob"})
	assert.Equal(t, 1, dup.count(EventJoined))
}

func TestRoom_JoinRejectsWhenFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUsers = 1
	r, _ := newTestRoom(cfg)

	join(t, r, "conn-1", "alice")
	assert.True(t, r.IsFull())

	late := &fakeOutlet{}
	r.Attach("conn-2", late)
	send(r, "conn-2", EventJoin, JoinRequest{Name: "bob"})
	assert.Equal(t, 1, late.count(EventJoinError))

	// A leaver frees the slot.
	r.Detach("conn-1")
	assert.False(t, r.IsFull())
	send(r, "conn-2", EventJoin, JoinRequest{Name: "bob"})
	assert.Equal(t, 1, late.count(EventJoined))
}

func TestRoom_MoveBroadcastsToOthersClamped(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")
	bob := join(t, r, "conn-2", "bob")

	send(r, "conn-1", EventMoveUser, MoveRequest{X: -20, Y: 120})

	assert.Equal(t, 0, alice.count(EventUserMoved))

	var moved UserMovedPayload
	bob.decodeLast(t, EventUserMoved, &moved)
	assert.Equal(t, "conn-1", moved.UserID)
	assert.Equal(t, 5.0, moved.X)
	assert.Equal(t, 90.0, moved.Y)
}

func TestRoom_DetachAnnouncesLeave(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")
	join(t, r, "conn-2", "bob")

	r.Detach("conn-2")

	var left string
	alice.decodeLast(t, EventUserLeft, &left)
	assert.Equal(t, "conn-2", left)

	var count UserCountPayload
	alice.decodeLast(t, EventUserCount, &count)
	assert.Equal(t, 1, count.Current)

	// Repeated detach is a no-op.
	before := alice.count(EventUserLeft)
	r.Detach("conn-2")
	assert.Equal(t, before, alice.count(EventUserLeft))
}

func TestRoom_CreateAuctionRequiresAdmin(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	spectator := &fakeOutlet{}
	r.Attach("conn-0", spectator)
	send(r, "conn-0", EventCreateAuction, CreateAuctionRequest{Item: "Watch", StartPrice: 1000})
	assert.Equal(t, 2104, lastErrorCode(t, spectator))

	alice := join(t, r, "conn-1", "alice")
	send(r, "conn-1", EventCreateAuction, CreateAuctionRequest{Item: "Watch", StartPrice: 1000})
	assert.Equal(t, 3101, lastErrorCode(t, alice))
	assert.Equal(t, 0, alice.count(EventAuctionCreated))

	admin := join(t, r, "conn-admin", "Kane Lee")
	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{Item: "Watch", StartPrice: 1000, MinPrice: 0})

	var created AuctionCreatedPayload
	alice.decodeLast(t, EventAuctionCreated, &created)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "Watch", created.Item)
	assert.Equal(t, 1000, created.StartPrice)
	assert.Equal(t, 1, admin.count(EventAuctionCreated))
}

func TestRoom_CreateAuctionValidation(t *testing.T) {
	r, _ := newTestRoom(testConfig())
	admin := join(t, r, "conn-admin", "Kane Lee")

	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{Item: "  ", StartPrice: 1000})
	assert.Equal(t, 4101, lastErrorCode(t, admin))

	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{Item: "Watch", StartPrice: 100, MinPrice: 100})
	assert.Equal(t, 4101, lastErrorCode(t, admin))

	assert.Equal(t, 0, admin.count(EventAuctionCreated))
}

func TestRoom_StartAuctionGuards(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")
	admin := join(t, r, "conn-admin", "Kane Lee")

	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{Item: "Watch", StartPrice: 1000})
	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{Item: "Vase", StartPrice: 500})

	send(r, "conn-1", EventStartAuction, StartAuctionRequest{AuctionID: 1})
	assert.Equal(t, 3101, lastErrorCode(t, alice))

	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 99})
	assert.Equal(t, 4102, lastErrorCode(t, admin))

	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 1, CountdownDuration: 3})
	assert.Equal(t, 1, admin.count(EventAuctionCountdown))

	// The running countdown blocks restarting it and starting the other one.
	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 1})
	assert.Equal(t, 4103, lastErrorCode(t, admin))

	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 2})
	assert.Equal(t, 4105, lastErrorCode(t, admin))
}

func TestRoom_FullAuctionLifecycleWithTimeout(t *testing.T) {
	r, clock := newTestRoom(testConfig())

	admin := join(t, r, "conn-admin", "Kane Lee")
	bidder := join(t, r, "conn-1", "alice")

	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{
		Item:              "Watch",
		StartPrice:        1000,
		MinPrice:          0,
		DecrementAmount:   100,
		DecrementInterval: 1000,
	})
	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 1, CountdownDuration: 3})

	// First countdown tick goes out synchronously.
	var countdown CountdownPayload
	bidder.decodeLast(t, EventAuctionCountdown, &countdown)
	assert.Equal(t, 3, countdown.Countdown)
	assert.Equal(t, 3, countdown.InitialCountdown)
	assert.Equal(t, "Watch", countdown.AuctionData.Item)

	for i := 2; i >= 0; i-- {
		advanceUntil(t, clock, time.Second, bidder, EventAuctionCountdown, 4-i)
		bidder.decodeLast(t, EventAuctionCountdown, &countdown)
		assert.Equal(t, i, countdown.Countdown)
	}

	// One more second after the "0" tick before the price starts moving.
	advanceUntil(t, clock, time.Second, bidder, EventAuctionStarted, 1)

	var started AuctionStartedPayload
	bidder.decodeLast(t, EventAuctionStarted, &started)
	assert.Equal(t, 1, started.AuctionID)
	assert.Equal(t, clock.Now().Add(100*time.Millisecond).UnixMilli(), started.Timestamp)

	var price PriceUpdatePayload
	for i := 1; i <= 4; i++ {
		advanceUntil(t, clock, time.Second, bidder, EventPriceUpdate, i)
		bidder.decodeLast(t, EventPriceUpdate, &price)
		assert.Equal(t, 1000-i*100, price.CurrentPrice)
	}

	send(r, "conn-1", EventBid, BidRequest{AuctionID: 1})

	// Crown and score move with the bid; everyone gets the fresh roster.
	var roster []UserSnapshot
	admin.decodeLast(t, EventUserUpdate, &roster)
	require.Len(t, roster, 2)
	for _, u := range roster {
		assert.Equal(t, u.ID == "conn-1", u.HasCrown)
	}

	var hover HoverCountPayload
	admin.decodeLast(t, EventBidHoverCount, &hover)
	assert.Equal(t, 0, hover.Count)

	var dialogue DialogueStartPayload
	admin.decodeLast(t, EventWinnerDialogueStart, &dialogue)
	assert.Equal(t, "conn-1", dialogue.WinnerID)
	assert.Equal(t, "alice", dialogue.WinnerName)
	assert.Equal(t, 600, dialogue.Price)
	assert.Equal(t, 3, dialogue.TimeLimit)
	assert.Len(t, dialogue.DialogueOptions, 4)
	assert.True(t, strings.HasPrefix(dialogue.SessionID, "dialogue_1_"))

	// No selection: the timeout resolves the dialogue and ends the auction.
	priceUpdates := bidder.count(EventPriceUpdate)
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
	}

	require.Eventually(t, func() bool {
		return bidder.count(EventAuctionEnded) >= 1
	}, waitFor, tick)

	var accepted BidAcceptedPayload
	bidder.decodeLast(t, EventBidAccepted, &accepted)
	assert.Equal(t, 1, accepted.AuctionID)
	assert.Equal(t, "conn-1", accepted.Winner)
	assert.Equal(t, "alice", accepted.WinnerName)
	assert.Equal(t, 600, accepted.Price)

	var ended AuctionEndedPayload
	bidder.decodeLast(t, EventAuctionEnded, &ended)
	require.NotNil(t, ended.Winner)
	require.NotNil(t, ended.FinalPrice)
	assert.Equal(t, "conn-1", *ended.Winner)
	assert.Equal(t, 600, *ended.FinalPrice)

	// The decay timer died with the bid; the price never moves again.
	clock.Advance(5 * time.Second)
	assert.Equal(t, priceUpdates, bidder.count(EventPriceUpdate))
}

func TestRoom_SecondBidderLoses(t *testing.T) {
	r, clock := newTestRoom(testConfig())

	join(t, r, "conn-admin", "Kane Lee")
	first := join(t, r, "conn-1", "alice")
	second := join(t, r, "conn-2", "bob")

	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{Item: "Watch", StartPrice: 1000})
	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 1, CountdownDuration: 1})

	advanceUntil(t, clock, time.Second, first, EventAuctionCountdown, 2)
	advanceUntil(t, clock, time.Second, first, EventAuctionStarted, 1)

	send(r, "conn-1", EventBid, BidRequest{AuctionID: 1})
	send(r, "conn-2", EventBid, BidRequest{AuctionID: 1})

	assert.Equal(t, 4104, lastErrorCode(t, second))
	assert.Equal(t, 0, first.count(EventError))
	assert.Equal(t, 1, first.count(EventWinnerDialogueStart))

	var dialogue DialogueStartPayload
	second.decodeLast(t, EventWinnerDialogueStart, &dialogue)
	assert.Equal(t, "conn-1", dialogue.WinnerID)
}

func TestRoom_DialogueSelectionKeepsFullWindow(t *testing.T) {
	r, clock := newTestRoom(testConfig())

	admin := join(t, r, "conn-admin", "Kane Lee")
	bidder := join(t, r, "conn-1", "alice")

	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{Item: "Watch", StartPrice: 1000})
	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 1, CountdownDuration: 1})

	advanceUntil(t, clock, time.Second, bidder, EventAuctionCountdown, 2)
	advanceUntil(t, clock, time.Second, bidder, EventAuctionStarted, 1)

	send(r, "conn-1", EventBid, BidRequest{AuctionID: 1})

	var dialogue DialogueStartPayload
	bidder.decodeLast(t, EventWinnerDialogueStart, &dialogue)

	// Only the winner may select.
	send(r, "conn-admin", EventSelectDialogue, SelectDialogueRequest{SessionID: dialogue.SessionID, SelectedIndex: 0})
	assert.Equal(t, 4201, lastErrorCode(t, admin))
	assert.Equal(t, 0, admin.count(EventWinnerDialogueSelect))

	// Winner picks one second in; one second of the window is already spent.
	clock.Advance(time.Second)
	send(r, "conn-1", EventSelectDialogue, SelectDialogueRequest{SessionID: dialogue.SessionID, SelectedIndex: 1})

	var selected DialogueSelectedPayload
	admin.decodeLast(t, EventWinnerDialogueSelect, &selected)
	assert.Equal(t, dialogue.SessionID, selected.SessionID)
	assert.Equal(t, "needed this!", selected.SelectedOption)
	assert.Equal(t, "alice", selected.WinnerName)

	// A second pick is rejected.
	send(r, "conn-1", EventSelectDialogue, SelectDialogueRequest{SessionID: dialogue.SessionID, SelectedIndex: 2})
	assert.Equal(t, 4201, lastErrorCode(t, bidder))

	// The line stays up for the remaining two seconds, then the celebration.
	assert.Equal(t, 0, bidder.count(EventBidAccepted))
	clock.Advance(time.Second)
	assert.Equal(t, 0, bidder.count(EventBidAccepted))

	clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		return bidder.count(EventBidAccepted) >= 1
	}, waitFor, tick)

	assert.Equal(t, 1, bidder.count(EventAuctionEnded))

	// A selection long after resolution is rejected.
	send(r, "conn-1", EventSelectDialogue, SelectDialogueRequest{SessionID: dialogue.SessionID, SelectedIndex: 0})
	assert.Equal(t, 4201, lastErrorCode(t, bidder))
	assert.Equal(t, 1, bidder.count(EventBidAccepted))
}

func TestRoom_DialogueSurvivesWinnerDisconnect(t *testing.T) {
	r, clock := newTestRoom(testConfig())

	admin := join(t, r, "conn-admin", "Kane Lee")
	bidder := join(t, r, "conn-1", "alice")

	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{Item: "Watch", StartPrice: 1000})
	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 1, CountdownDuration: 1})

	advanceUntil(t, clock, time.Second, bidder, EventAuctionCountdown, 2)
	advanceUntil(t, clock, time.Second, bidder, EventAuctionStarted, 1)

	send(r, "conn-1", EventBid, BidRequest{AuctionID: 1})
	require.Equal(t, 1, admin.count(EventWinnerDialogueStart))

	// The winner drops before picking a line; the timeout still resolves the
	// session and the rest of the room sees the celebration.
	r.Detach("conn-1")

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
	}

	require.Eventually(t, func() bool {
		return admin.count(EventAuctionEnded) >= 1
	}, waitFor, tick)

	var accepted BidAcceptedPayload
	admin.decodeLast(t, EventBidAccepted, &accepted)
	assert.Equal(t, "conn-1", accepted.Winner)
	assert.Equal(t, "alice", accepted.WinnerName)
}

func TestRoom_AuctionEndsUnsoldAtFloor(t *testing.T) {
	r, clock := newTestRoom(testConfig())

	admin := join(t, r, "conn-admin", "Kane Lee")

	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{
		Item:            "Vase",
		StartPrice:      30,
		MinPrice:        0,
		DecrementAmount: 10,
	})
	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 1, CountdownDuration: 1})

	advanceUntil(t, clock, time.Second, admin, EventAuctionCountdown, 2)
	advanceUntil(t, clock, time.Second, admin, EventAuctionStarted, 1)

	advanceUntil(t, clock, time.Second, admin, EventPriceUpdate, 1)
	advanceUntil(t, clock, time.Second, admin, EventPriceUpdate, 2)

	var price PriceUpdatePayload
	admin.decodeLast(t, EventPriceUpdate, &price)
	assert.Equal(t, 10, price.CurrentPrice)

	// The next decrement would cross the floor: no bid, no winner.
	advanceUntil(t, clock, time.Second, admin, EventAuctionEnded, 1)

	var ended AuctionEndedPayload
	admin.decodeLast(t, EventAuctionEnded, &ended)
	assert.Equal(t, 1, ended.AuctionID)
	assert.Nil(t, ended.Winner)
	assert.Nil(t, ended.FinalPrice)
	assert.Equal(t, 0, admin.count(EventWinnerDialogueStart))

	// A late bid on the ended auction is rejected.
	bidder := join(t, r, "conn-1", "alice")
	send(r, "conn-1", EventBid, BidRequest{AuctionID: 1})
	assert.Equal(t, 4104, lastErrorCode(t, bidder))
}

func TestRoom_ChatStoreAndBroadcast(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")
	bob := join(t, r, "conn-2", "bob")

	send(r, "conn-1", EventChatMessage, ChatRequest{Text: "hello everyone"})

	var msg ChatMessage
	bob.decodeLast(t, EventChatBroadcast, &msg)
	assert.Equal(t, "conn-1", msg.UserID)
	assert.Equal(t, "alice", msg.UserName)
	assert.Equal(t, "hello everyone", msg.Text)
	assert.NotEmpty(t, msg.ID)

	// The sender gets the broadcast too.
	assert.Equal(t, 1, alice.count(EventChatBroadcast))

	// A later joiner receives it in the joined history.
	carol := join(t, r, "conn-3", "carol")
	var joined JoinedPayload
	carol.decodeLast(t, EventJoined, &joined)
	require.Len(t, joined.Messages, 1)
	assert.Equal(t, "hello everyone", joined.Messages[0].Text)
}

func TestRoom_ChatRejectsOverlongMessage(t *testing.T) {
	r, _ := newTestRoom(testConfig())
	alice := join(t, r, "conn-1", "alice")

	send(r, "conn-1", EventChatMessage, ChatRequest{Text: strings.Repeat("a", 201)})
	assert.Equal(t, 4302, lastErrorCode(t, alice))
	assert.Equal(t, 0, alice.count(EventChatBroadcast))

	send(r, "conn-1", EventChatMessage, ChatRequest{Text: strings.Repeat("a", 200)})
	assert.Equal(t, 1, alice.count(EventChatBroadcast))
}

func TestRoom_ChatToggleGatesNonAdmins(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")
	admin := join(t, r, "conn-admin", "Kane Lee")

	// Only the admin may toggle.
	r.HandleEvent("conn-1", Envelope{Event: EventToggleChat})
	assert.Equal(t, 3101, lastErrorCode(t, alice))

	r.HandleEvent("conn-admin", Envelope{Event: EventToggleChat})

	var toggled ChatToggledPayload
	alice.decodeLast(t, EventChatToggled, &toggled)
	assert.False(t, toggled.Enabled)
	assert.Equal(t, "Chat disabled by admin", toggled.Message)

	// Non-admin chat is silenced; only the sender is told.
	send(r, "conn-1", EventChatMessage, ChatRequest{Text: "anyone?"})
	assert.Equal(t, 1, alice.count(EventChatDisabled))
	assert.Equal(t, 0, admin.count(EventChatDisabled))
	assert.Equal(t, 0, admin.count(EventChatBroadcast))

	// The admin still talks.
	send(r, "conn-admin", EventChatMessage, ChatRequest{Text: "quiet please"})
	assert.Equal(t, 1, alice.count(EventChatBroadcast))

	r.HandleEvent("conn-admin", Envelope{Event: EventToggleChat})
	alice.decodeLast(t, EventChatToggled, &toggled)
	assert.True(t, toggled.Enabled)

	send(r, "conn-1", EventChatMessage, ChatRequest{Text: "back!"})
	assert.Equal(t, 2, alice.count(EventChatBroadcast))
}

func TestRoom_AdminAnnouncementBypassesStore(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")
	join(t, r, "conn-admin", "Kane Lee")

	send(r, "conn-admin", EventChatMessage, ChatRequest{Text: "/auction starts in five minutes"})

	var ann AnnouncementPayload
	alice.decodeLast(t, EventAnnouncement, &ann)
	assert.Equal(t, "auction starts in five minutes", ann.Message)
	assert.Equal(t, "Kane Lee", ann.From)
	assert.Equal(t, 0, alice.count(EventChatBroadcast))

	// Bare prefix produces nothing.
	send(r, "conn-admin", EventChatMessage, ChatRequest{Text: "/   "})
	assert.Equal(t, 1, alice.count(EventAnnouncement))

	// A non-admin slash message is ordinary chat.
	send(r, "conn-1", EventChatMessage, ChatRequest{Text: "/hello"})
	var msg ChatMessage
	alice.decodeLast(t, EventChatBroadcast, &msg)
	assert.Equal(t, "/hello", msg.Text)

	// The announcement never lands in chat history.
	carol := join(t, r, "conn-3", "carol")
	var joined JoinedPayload
	carol.decodeLast(t, EventJoined, &joined)
	require.Len(t, joined.Messages, 1)
	assert.Equal(t, "/hello", joined.Messages[0].Text)
}

func TestRoom_HoverCounting(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")
	join(t, r, "conn-2", "bob")

	// Hovering requires membership.
	spectator := &fakeOutlet{}
	r.Attach("conn-0", spectator)
	r.HandleEvent("conn-0", Envelope{Event: EventBidHoverStart})
	assert.Equal(t, 0, alice.count(EventBidHoverCount))

	var hover HoverCountPayload

	r.HandleEvent("conn-1", Envelope{Event: EventBidHoverStart})
	alice.decodeLast(t, EventBidHoverCount, &hover)
	assert.Equal(t, 1, hover.Count)

	// Repeats do not double count.
	r.HandleEvent("conn-1", Envelope{Event: EventBidHoverStart})
	alice.decodeLast(t, EventBidHoverCount, &hover)
	assert.Equal(t, 1, hover.Count)

	r.HandleEvent("conn-2", Envelope{Event: EventBidHoverStart})
	alice.decodeLast(t, EventBidHoverCount, &hover)
	assert.Equal(t, 2, hover.Count)

	r.HandleEvent("conn-1", Envelope{Event: EventBidHoverEnd})
	alice.decodeLast(t, EventBidHoverCount, &hover)
	assert.Equal(t, 1, hover.Count)

	// Disconnecting while hovering releases the count.
	r.Detach("conn-2")
	alice.decodeLast(t, EventBidHoverCount, &hover)
	assert.Equal(t, 0, hover.Count)
}

func TestRoom_ReactionGating(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	alice := join(t, r, "conn-1", "alice")
	admin := join(t, r, "conn-admin", "Kane Lee")

	send(r, "conn-1", EventReaction, ReactionRequest{Emoji: "😀"})

	var reaction ReactionPayload
	admin.decodeLast(t, EventUserReaction, &reaction)
	assert.Equal(t, "conn-1", reaction.UserID)
	assert.Equal(t, "😀", reaction.Emoji)
	assert.False(t, reaction.IsSpecial)
	assert.Nil(t, reaction.SoundTimestamp)

	// The special emoji needs the crown or the admin.
	send(r, "conn-1", EventReaction, ReactionRequest{Emoji: SpecialEmoji})
	assert.Equal(t, 3102, lastErrorCode(t, alice))
	assert.Equal(t, 1, admin.count(EventUserReaction))

	send(r, "conn-admin", EventReaction, ReactionRequest{Emoji: SpecialEmoji})
	alice.decodeLast(t, EventUserReaction, &reaction)
	assert.True(t, reaction.IsSpecial)
	require.NotNil(t, reaction.SoundTimestamp)
	assert.Equal(t, reaction.Timestamp, *reaction.SoundTimestamp)
}

func TestRoom_ServerTimeHeartbeat(t *testing.T) {
	r, clock := newTestRoom(testConfig())

	out := &fakeOutlet{}
	r.Attach("conn-1", out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	// Give Run a moment to install its ticker before advancing.
	require.Eventually(t, func() bool {
		clock.Advance(time.Second)
		return out.count(EventServerTime) >= 1
	}, waitFor, 10*time.Millisecond)

	var st ServerTimePayload
	out.decodeLast(t, EventServerTime, &st)
	assert.NotZero(t, st.Timestamp)
	assert.Regexp(t, `^\d{4}\. \d{2}\. \d{2}\. \d{2}:\d{2}:\d{2}$`, st.Formatted)
}

func TestRoom_AuctionStatusReflectsActivePhase(t *testing.T) {
	r, clock := newTestRoom(testConfig())

	join(t, r, "conn-admin", "Kane Lee")

	send(r, "conn-admin", EventCreateAuction, CreateAuctionRequest{Item: "Watch", StartPrice: 1000})
	send(r, "conn-admin", EventStartAuction, StartAuctionRequest{AuctionID: 1, CountdownDuration: 1})

	// Counting down is not yet active.
	count, chatEnabled, status := r.Status()
	assert.Equal(t, 1, count.Current)
	assert.True(t, chatEnabled)
	assert.False(t, status.HasActiveAuction)

	watcher := &fakeOutlet{}
	r.Attach("conn-w", watcher)
	advanceUntil(t, clock, time.Second, watcher, EventAuctionCountdown, 1)
	advanceUntil(t, clock, time.Second, watcher, EventAuctionStarted, 1)

	_, _, status = r.Status()
	require.True(t, status.HasActiveAuction)
	require.NotNil(t, status.ActiveAuction)
	assert.Equal(t, "Watch", status.ActiveAuction.Item)
	assert.Equal(t, 1000, status.ActiveAuction.CurrentPrice)

	// A fresh attach during the active phase sees it immediately.
	late := &fakeOutlet{}
	r.Attach("conn-late", late)
	var attachStatus AuctionStatusPayload
	late.decodeLast(t, EventAuctionStatus, &attachStatus)
	assert.True(t, attachStatus.HasActiveAuction)
}

func TestRoom_UnknownEventsAreIgnored(t *testing.T) {
	r, _ := newTestRoom(testConfig())
	alice := join(t, r, "conn-1", "alice")

	r.HandleEvent("conn-1", Envelope{Event: "teleport"})
	r.HandleEvent("conn-1", Envelope{Event: EventJoin, Payload: json.RawMessage(`{broken`)})

	assert.Equal(t, 0, alice.count(EventError))
	assert.Equal(t, 1, alice.count(EventJoined))
}

func TestRoom_ManyUsersJoinOrderPreserved(t *testing.T) {
	r, _ := newTestRoom(testConfig())

	for i := 0; i < 10; i++ {
		join(t, r, fmt.Sprintf("conn-%d", i), fmt.Sprintf("user%d", i))
	}

	late := join(t, r, "conn-late", "latecomer")

	var joined JoinedPayload
	late.decodeLast(t, EventJoined, &joined)
	require.Len(t, joined.Users, 11)
	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("conn-%d", i), joined.Users[i].ID)
	}
}
