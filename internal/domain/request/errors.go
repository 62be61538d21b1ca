package request

import "errors"

var (
	ErrRequestNotFound         = errors.New("blood request not found")
	ErrInvalidStatus           = errors.New("invalid blood request status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotOwner                = errors.New("not authorized to modify this request")
	ErrRequestClosed           = errors.New("blood request is no longer accepting responses")
)
