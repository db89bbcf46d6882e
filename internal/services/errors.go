// Package services defines the business logic for sessions, conversation
// flow, escalation, agents, and care content. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Session and profile errors.
var (
	// ErrSessionNotFound indicates the session token has no stored state.
	ErrSessionNotFound = errors.New("session not found")

	// ErrProfileNotFound indicates no profile row exists for the identifier.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrEmptyInput is returned when an advance request carries no usable
	// input for a step that requires one.
	ErrEmptyInput = errors.New("input is empty")

	// ErrConversationDone is returned when advancing a session whose flow
	// has already reached its end.
	ErrConversationDone = errors.New("conversation already finished")
)

// Escalation and agent errors.
var (
	// ErrConversationNotFound indicates the conversation id does not exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrInvalidTransition is returned when a requested escalation change is
	// not one of NONE→PENDING→ASSIGNED→RESOLVED.
	ErrInvalidTransition = errors.New("invalid escalation transition")

	// ErrNoAgentAvailable indicates every online agent is at capacity. The
	// conversation stays pending; this is a waiting state, not a failure.
	ErrNoAgentAvailable = errors.New("no agent available")

	// ErrAgentNotFound indicates the agent id or email does not exist.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrEmailTaken is returned when creating an agent with an email that is
	// already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidStatus is returned when an agent status update names an
	// unknown presence value.
	ErrInvalidStatus = errors.New("invalid agent status")
)

// Care-content and ingest errors.
var (
	// ErrClinicNotFound indicates the clinic id does not exist.
	ErrClinicNotFound = errors.New("clinic not found")

	// ErrReferralNotFound indicates the referral id does not exist.
	ErrReferralNotFound = errors.New("referral not found")

	// ErrChannelNotFound indicates the channel id or name does not exist.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChannelTaken is returned when registering a channel name that
	// already exists.
	ErrChannelTaken = errors.New("channel name already registered")

	// ErrEmptyBatch is returned when a transcript push carries no turns.
	ErrEmptyBatch = errors.New("batch is empty")
)
