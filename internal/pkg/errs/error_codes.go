/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room Membership Errors
const (
	// ErrRoomFull indicates that the room has reached its maximum user capacity.
	ErrRoomFull = 2101

	// ErrNameTaken indicates that the requested display name is already in use.
	ErrNameTaken = 2102

	// ErrNameInvalid indicates that the display name is empty or too long.
	ErrNameInvalid = 2103

	// ErrNotJoined indicates that the connection attempted an action before joining.
	ErrNotJoined = 2104
)

// 3xxx: Authorization Errors
const (
	// ErrNotAdmin indicates that a non-admin user attempted an admin-only action.
	ErrNotAdmin = 3101

	// ErrReactionNotAllowed indicates an attempt to use the privileged emoji
	// without holding the crown or admin rights.
	ErrReactionNotAllowed = 3102
)

// 4xxx: Auction and Dialogue State Errors
const (
	// ErrAuctionInvalid indicates that auction creation parameters failed validation.
	ErrAuctionInvalid = 4101

	// ErrAuctionNotFound indicates that the referenced auction does not exist.
	ErrAuctionNotFound = 4102

	// ErrAuctionNotPending indicates an attempt to start an auction that already ran.
	ErrAuctionNotPending = 4103

	// ErrAuctionNotActive indicates a bid on an auction that is not accepting bids.
	ErrAuctionNotActive = 4104

	// ErrAuctionInProgress indicates an attempt to start an auction while another
	// one is counting down, active, or awaiting its winner dialogue.
	ErrAuctionInProgress = 4105

	// ErrDialogueInvalid indicates an invalid winner-dialogue selection: unknown
	// session, already resolved, out-of-range option, or a non-winner requester.
	ErrDialogueInvalid = 4201

	// ErrChatDisabled indicates that chat is currently disabled by the admin.
	ErrChatDisabled = 4301

	// ErrMessageTooLong indicates that the chat message exceeded the maximum length.
	ErrMessageTooLong = 4302
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
