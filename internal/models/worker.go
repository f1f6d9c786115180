package models

type Action string

const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
)

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// ParseSize maps a raw size to a tier. Unknown and empty values are small.
func ParseSize(s string) Size {
	switch Size(s) {
	case SizeMedium:
		return SizeMedium
	case SizeLarge:
		return SizeLarge
	default:
		return SizeSmall
	}
}

// WorkerPayload is the body of the gateway's self-invocation. Async is the
// worker-mode marker and is only ever set by a dispatcher.
type WorkerPayload struct {
	// Keys
	Async     bool   `json:"_async"`
	RequestID string `json:"requestId,omitempty"`

	// Business
	Action Action `json:"action"`
	Size   string `json:"size,omitempty"`
}

// WorkerResult is returned by a worker invocation. Nobody waits for it; it
// only ends up in logs.
type WorkerResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
