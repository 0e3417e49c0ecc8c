/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room Membership Errors
	ErrRoomFull:    {Code: ErrRoomFull, Message: "Server is full. Maximum %d users allowed."},
	ErrNameTaken:   {Code: ErrNameTaken, Message: "Username already taken. Please choose another name."},
	ErrNameInvalid: {Code: ErrNameInvalid, Message: "Username must be between 1 and %d characters."},
	ErrNotJoined:   {Code: ErrNotJoined, Message: "Please join the room first."},

	// 3xxx: Authorization Errors
	ErrNotAdmin:           {Code: ErrNotAdmin, Message: "Only admin can perform this action."},
	ErrReactionNotAllowed: {Code: ErrReactionNotAllowed, Message: "This reaction is reserved for the crown holder."},

	// 4xxx: Auction and Dialogue State Errors
	ErrAuctionInvalid:    {Code: ErrAuctionInvalid, Message: "Invalid auction parameters."},
	ErrAuctionNotFound:   {Code: ErrAuctionNotFound, Message: "Auction not found."},
	ErrAuctionNotPending: {Code: ErrAuctionNotPending, Message: "Auction has already been started."},
	ErrAuctionNotActive:  {Code: ErrAuctionNotActive, Message: "Auction is not accepting bids."},
	ErrAuctionInProgress: {Code: ErrAuctionInProgress, Message: "Another auction is already in progress."},
	ErrDialogueInvalid:   {Code: ErrDialogueInvalid, Message: "Invalid dialogue selection."},
	ErrChatDisabled:      {Code: ErrChatDisabled, Message: "Chat is currently disabled by admin"},
	ErrMessageTooLong:    {Code: ErrMessageTooLong, Message: "Message is too long. Maximum %d characters."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
