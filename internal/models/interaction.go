package models

import "encoding/json"

type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
)

// Interaction is the subset of a Discord interaction body the gateway reads.
type Interaction struct {
	Type   InteractionType `json:"type"`
	Member *Member         `json:"member,omitempty"`
	Data   *CommandData    `json:"data,omitempty"`
}

type Member struct {
	Roles []string `json:"roles"`
}

type CommandData struct {
	Name    string          `json:"name"`
	Options []CommandOption `json:"options,omitempty"`
}

type CommandOption struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`
}

// HasRole reports whether the invoking member carries role.
func (i Interaction) HasRole(role string) bool {
	if i.Member == nil || role == "" {
		return false
	}
	for _, r := range i.Member.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i Interaction) CommandName() string {
	if i.Data == nil {
		return ""
	}
	return i.Data.Name
}

// StringOption returns the value of the named option when it is a JSON
// string. Missing options and non-string values report ok=false.
func (i Interaction) StringOption(name string) (string, bool) {
	if i.Data == nil {
		return "", false
	}
	for _, o := range i.Data.Options {
		if o.Name != name {
			continue
		}
		var s string
		if err := json.Unmarshal(o.Value, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}

type InteractionResponseType int

const (
	ResponsePong           InteractionResponseType = 1
	ResponseChannelMessage InteractionResponseType = 4
)

// FlagEphemeral makes a reply visible only to the invoking user.
const FlagEphemeral = 64

type InteractionResponse struct {
	Type InteractionResponseType `json:"type"`
	Data *ResponseData           `json:"data,omitempty"`
}

type ResponseData struct {
	Content string `json:"content"`
	Flags   int    `json:"flags,omitempty"`
}

func Pong() InteractionResponse {
	return InteractionResponse{Type: ResponsePong}
}

func Ephemeral(content string) InteractionResponse {
	return InteractionResponse{
		Type: ResponseChannelMessage,
		Data: &ResponseData{Content: content, Flags: FlagEphemeral},
	}
}
