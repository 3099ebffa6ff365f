package service

import "errors"

// Domain errors. Handlers map these to HTTP statuses in one place
// (api/rest/respond.go) instead of classifying per endpoint.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrAttendeeNotFound   = errors.New("attendee not found")
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrFriendshipNotFound = errors.New("friendship not found")
	ErrPhotoNotFound      = errors.New("photo not found")

	ErrNotHost = errors.New("only the host may modify this event")

	ErrInvalidRSVP     = errors.New("invalid rsvp value")
	ErrInvalidPrivacy  = errors.New("invalid privacy level")
	ErrSelfFriend      = errors.New("cannot befriend yourself")
	ErrAlreadyFriends  = errors.New("already friends")
	ErrRequestExists   = errors.New("friend request already pending")
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrBadContentType  = errors.New("unsupported content type")
	ErrDuplicateUser   = errors.New("username or email already taken")
	ErrStorageDisabled = errors.New("photo uploads are not configured")
)
