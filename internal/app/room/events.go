/*
Package room contains the core logic for the auction room: session state, the Dutch
auction state machine, the winner-dialogue negotiation, chat, and event broadcasting.

This file defines the wire protocol: event names and the JSON payload structures
exchanged with clients over the websocket connection.
*/
package room

import "time"

// Inbound event names (client → server).
const (
	EventJoin           = "join"
	EventCreateAuction  = "createAuction"
	EventStartAuction   = "startAuction"
	EventBid            = "bid"
	EventChatMessage    = "chatMessage"
	EventToggleChat     = "toggleChat"
	EventMoveUser       = "moveUser"
	EventReaction       = "reaction"
	EventBidHoverStart  = "bidHoverStart"
	EventBidHoverEnd    = "bidHoverEnd"
	EventSelectDialogue = "selectDialogue"
)

// Outbound event names (server → one/some/all clients).
const (
	EventJoined                = "joined"
	EventJoinError             = "joinError"
	EventError                 = "error"
	EventUserJoined            = "userJoined"
	EventUserLeft              = "userLeft"
	EventUserUpdate            = "userUpdate"
	EventUserCount             = "userCount"
	EventUserMoved             = "userMoved"
	EventAuctionCreated        = "auctionCreated"
	EventAuctionCountdown      = "auctionCountdown"
	EventAuctionStarted        = "auctionStarted"
	EventPriceUpdate           = "priceUpdate"
	EventAuctionEnded          = "auctionEnded"
	EventWinnerDialogueStart   = "winnerDialogueStart"
	EventWinnerDialogueSelect  = "winnerDialogueSelected"
	EventBidAccepted           = "bidAccepted"
	EventChatBroadcast         = "chatMessage"
	EventChatToggled           = "chatToggled"
	EventChatDisabled          = "chatDisabled"
	EventAnnouncement          = "announcement"
	EventBidHoverCount         = "bidHoverCount"
	EventUserReaction          = "userReaction"
	EventServerTime            = "serverTime"
	EventConfigUpdate          = "configUpdate"
	EventAuctionStatus         = "auctionStatus"
)

// Inbound payloads.

type JoinRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type CreateAuctionRequest struct {
	Item              string `json:"item"`
	StartPrice        int    `json:"startPrice"`
	MinPrice          int    `json:"minPrice"`
	DecrementAmount   int    `json:"decrementAmount,omitempty"`
	DecrementInterval int    `json:"decrementInterval,omitempty"` // milliseconds
}

type StartAuctionRequest struct {
	AuctionID         int `json:"auctionId"`
	CountdownDuration int `json:"countdownDuration,omitempty"` // seconds
}

type BidRequest struct {
	AuctionID int `json:"auctionId"`
}

type ChatRequest struct {
	Text string `json:"text"`
}

type MoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

type SelectDialogueRequest struct {
	SessionID     string `json:"sessionId"`
	SelectedIndex int    `json:"selectedIndex"`
}

// Outbound payloads.

// UserSnapshot is the roster projection of a user shared with every client.
// Score and join time stay server-side.
type UserSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Avatar   string  `json:"avatar"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	HasCrown bool    `json:"hasCrown"`
}

// AuctionSnapshot is the history projection of an auction shared with clients.
type AuctionSnapshot struct {
	ID           int    `json:"id"`
	Item         string `json:"item"`
	StartPrice   int    `json:"startPrice"`
	CurrentPrice int    `json:"currentPrice"`
	MinPrice     int    `json:"minPrice"`
	State        string `json:"state"`
	IsActive     bool   `json:"isActive"`
	Winner       string `json:"winner,omitempty"`
}

// MovementConfig mirrors the client-side movement tuning shipped in configUpdate.
type MovementConfig struct {
	AnimationDuration float64 `json:"animation_duration"`
	EaseType          string  `json:"ease_type"`
}

type ConfigPayload struct {
	Movement MovementConfig `json:"movement"`
}

type JoinedPayload struct {
	UserID      string            `json:"userId"`
	Users       []UserSnapshot    `json:"users"`
	Auctions    []AuctionSnapshot `json:"auctions"`
	ChatEnabled bool              `json:"chatEnabled"`
	IsAdmin     bool              `json:"isAdmin"`
	Messages    []ChatMessage     `json:"messages"`
	Config      ConfigPayload     `json:"config"`
}

type JoinErrorPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type UserCountPayload struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type UserMovedPayload struct {
	UserID string  `json:"userId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type AuctionCreatedPayload struct {
	ID                int    `json:"id"`
	Item              string `json:"item"`
	StartPrice        int    `json:"startPrice"`
	CurrentPrice      int    `json:"currentPrice"`
	MinPrice          int    `json:"minPrice"`
	DecrementInterval int    `json:"decrementInterval"` // milliseconds
}

// CountdownItem is the item/price snapshot carried by every countdown tick so
// late-joining clients can render the upcoming auction.
type CountdownItem struct {
	Item          string `json:"item"`
	StartingPrice int    `json:"startingPrice"`
}

type CountdownPayload struct {
	Countdown        int           `json:"countdown"`
	AuctionID        int           `json:"auctionId"`
	InitialCountdown int           `json:"initialCountdown"`
	AuctionData      CountdownItem `json:"auctionData"`
}

type AuctionStartedPayload struct {
	AuctionID int   `json:"auctionId"`
	Timestamp int64 `json:"timestamp"` // milliseconds, includes the audio-sync lead
}

type PriceUpdatePayload struct {
	AuctionID    int `json:"auctionId"`
	CurrentPrice int `json:"currentPrice"`
}

type AuctionEndedPayload struct {
	AuctionID  int     `json:"auctionId"`
	Winner     *string `json:"winner"`
	FinalPrice *int    `json:"finalPrice"`
}

type DialogueStartPayload struct {
	SessionID       string   `json:"sessionId"`
	AuctionID       int      `json:"auctionId"`
	WinnerID        string   `json:"winnerId"`
	WinnerName      string   `json:"winnerName"`
	Price           int      `json:"price"`
	DialogueOptions []string `json:"dialogueOptions"`
	TimeLimit       int      `json:"timeLimit"` // whole seconds, rounded down
}

type DialogueSelectedPayload struct {
	SessionID      string `json:"sessionId"`
	SelectedOption string `json:"selectedOption"`
	WinnerID       string `json:"winnerId"`
	WinnerName     string `json:"winnerName"`
}

type BidAcceptedPayload struct {
	AuctionID  int    `json:"auctionId"`
	Winner     string `json:"winner"`
	WinnerName string `json:"winnerName"`
	Price      int    `json:"price"`
	Timestamp  int64  `json:"timestamp"` // milliseconds, includes the audio-sync lead
}

type ChatToggledPayload struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

type ChatDisabledPayload struct {
	Message string `json:"message"`
}

type AnnouncementPayload struct {
	Message   string    `json:"message"`
	From      string    `json:"from"`
	Timestamp time.Time `json:"timestamp"`
}

type HoverCountPayload struct {
	Count int `json:"count"`
}

type ReactionPayload struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Emoji     string `json:"emoji"`
	Timestamp int64  `json:"timestamp"` // milliseconds
	IsSpecial bool   `json:"isSpecial"`
	// SoundTimestamp synchronizes the special-emoji sound effect across clients.
	SoundTimestamp *int64 `json:"soundTimestamp"`
}

type ServerTimePayload struct {
	Timestamp int64  `json:"timestamp"` // milliseconds
	Formatted string `json:"formatted"`
}

// ActiveAuctionStatus is the compact view of the currently active auction sent
// to clients the moment they connect, before they join.
type ActiveAuctionStatus struct {
	ID           int    `json:"id"`
	Item         string `json:"item"`
	CurrentPrice int    `json:"currentPrice"`
}

type AuctionStatusPayload struct {
	HasActiveAuction bool                 `json:"hasActiveAuction"`
	ActiveAuction    *ActiveAuctionStatus `json:"activeAuction"`
}
