package worker

import (
	"bytes"
	"encoding/json"

	"discord-ecs-control/internal/models"
)

// ExtractPayload normalizes the shapes a self-invocation can arrive in:
// a JSON object, a JSON string holding an object, or an object whose
// "body" field is a string holding an object. ok is false when nothing
// decodes to an object. It never panics on malformed input.
func ExtractPayload(raw []byte) (models.WorkerPayload, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return models.WorkerPayload{}, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.WorkerPayload{}, false
		}
		return decodeObject([]byte(s))
	}

	var envelope struct {
		Body *string `json:"body"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Body != nil {
		if p, ok := decodeObject([]byte(*envelope.Body)); ok {
			return p, true
		}
	}
	return decodeObject(raw)
}

// IsWorkerInvocation reports whether raw is a dispatcher-built payload.
// Only the _async marker counts.
func IsWorkerInvocation(raw []byte) (models.WorkerPayload, bool) {
	p, ok := ExtractPayload(raw)
	if !ok || !p.Async {
		return models.WorkerPayload{}, false
	}
	return p, true
}

func decodeObject(b []byte) (models.WorkerPayload, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return models.WorkerPayload{}, false
	}
	var p models.WorkerPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return models.WorkerPayload{}, false
	}
	return p, true
}
