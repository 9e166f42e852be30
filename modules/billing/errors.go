package billing

import "errors"

var (
	ErrRecordNotFound       = errors.New("subscription record not found")
	ErrTransitionNotAllowed = errors.New("subscription status transition not allowed")
	ErrInvalidWebhook       = errors.New("invalid webhook payload")
)
