package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// Interaction types.
const (
	InteractionPing               = 1
	InteractionApplicationCommand = 2
)

// Interaction response types.
const (
	ResponsePong            = 1
	ResponseChannelMessage  = 4
	ResponseDeferredMessage = 5
)

// AdminPermission is the ADMINISTRATOR bit in the member permission set.
const AdminPermission = 0x8

// Interaction is an incoming interaction delivered over HTTP.
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Type          int              `json:"type"`
	Token         string           `json:"token"`
	GuildID       string           `json:"guild_id"`
	ChannelID     string           `json:"channel_id"`
	Data          *InteractionData `json:"data"`
	Member        *Member          `json:"member"`
}

// InteractionData is the invoked command and its arguments.
type InteractionData struct {
	Name    string              `json:"name"`
	Options []InteractionOption `json:"options"`
}

// InteractionOption is one provided command argument.
type InteractionOption struct {
	Name  string          `json:"name"`
	Type  int             `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Member is the guild member who invoked the interaction.
type Member struct {
	Permissions string `json:"permissions"`
}

// HasAdmin reports whether the member holds the administrator permission.
func (m *Member) HasAdmin() bool {
	if m == nil {
		return false
	}
	perms, err := strconv.ParseUint(m.Permissions, 10, 64)
	if err != nil {
		return false
	}
	return perms&AdminPermission != 0
}

// IntOption returns the named integer argument.
func (d *InteractionData) IntOption(name string) (int, bool) {
	for _, o := range d.Options {
		if o.Name != name {
			continue
		}
		var v int
		if err := json.Unmarshal(o.Value, &v); err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// StringOption returns the named string argument (channel ids arrive as
// strings).
func (d *InteractionData) StringOption(name string) (string, bool) {
	for _, o := range d.Options {
		if o.Name != name {
			continue
		}
		var v string
		if err := json.Unmarshal(o.Value, &v); err != nil {
			return "", false
		}
		return v, true
	}
	return "", false
}

// InteractionResponse is the immediate callback to an interaction.
type InteractionResponse struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// ResponseData is the message body of an interaction response.
type ResponseData struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// VerifySignature checks the ed25519 signature Discord attaches to every
// interaction request.
func VerifySignature(publicKey ed25519.PublicKey, signature, timestamp string, body []byte) bool {
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	msg := append([]byte(timestamp), body...)
	return ed25519.Verify(publicKey, msg, sig)
}

// ParsePublicKey decodes the hex application public key from the
// developer portal.
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return ed25519.PublicKey(key), nil
}
