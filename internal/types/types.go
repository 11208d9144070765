// Package types provides shared type definitions for the application.
package types

// Status represents the voice assistant's current loop state.
type Status string

// Assistant status values, in the order a successful segment moves through them.
const (
	StatusStopped    Status = "stopped"
	StatusListening  Status = "listening"
	StatusProcessing Status = "processing"
	StatusSpeaking   Status = "speaking"
)

// AssistantState is the status-indicator snapshot consumed by the frontend.
type AssistantState struct {
	Status Status `json:"status"`
	Muted  bool   `json:"muted"`
}

// VoiceResult is one round trip through the voice backend: what the user
// said, what the assistant answered, and where the spoken reply lives.
type VoiceResult struct {
	UserInput         string `json:"user_input"`
	AssistantResponse string `json:"assistant_response,omitempty"`
	AudioURL          string `json:"audio_url,omitempty"`
}
