// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication. Each one asks the frontend to
// re-render the named view from a fresh snapshot.
const (
	// EventMessages carries the active conversation's messages.
	EventMessages = "chat-messages"

	// EventHistory carries the sidebar conversation list with previews.
	EventHistory = "chat-history"

	// EventStatus carries the assistant's status-indicator state.
	EventStatus = "assistant-status"
)
