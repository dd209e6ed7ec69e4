package adapter

import "context"

// Message represents a chat message sent to the completion upstream.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Stream yields assistant text deltas in arrival order. Recv returns io.EOF
// once the upstream signals end of output; any other error means the
// connection broke mid-stream. Close must always be called and cancels
// whatever the upstream still has in flight.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// CompletionStreamer is the port for the external completion service.
// A non-nil error from StreamChat means the call never got going
// (connect failure, non-2xx, bad credential) and the caller should fall
// back to canned text rather than surface the failure.
type CompletionStreamer interface {
	StreamChat(ctx context.Context, messages []Message) (Stream, error)
}
