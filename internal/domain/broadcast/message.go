// Package broadcast holds the routing rules of realtime messages pushed to
// connected dashboards and POS terminals.
package broadcast

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
)

var channelPattern = regexp.MustCompile(`^[a-z0-9:_-]{1,64}$`)

const (
	partnerChannelPrefix = "partner:"
	userChannelPrefix    = "user:"
	rolePrefix           = "role:"
)

// PartnerChannel is the channel every connection of a partner joins
func PartnerChannel(id uuid.UUID) string { return partnerChannelPrefix + id.String() }

// UserChannel is the private channel of a user
func UserChannel(id uuid.UUID) string { return userChannelPrefix + id.String() }

// RoleChannel is the channel shared by every user of a role
func RoleChannel(role identity.Role) string { return rolePrefix + string(role) }

// ValidChannel reports whether name is a legal channel name
func ValidChannel(name string) bool {
	return channelPattern.MatchString(name)
}

// Target selects recipients. Every set field must match; an empty target reaches everyone.
type Target struct {
	Channel   string        `json:"channel,omitempty"`
	UserID    *uuid.UUID    `json:"user_id,omitempty"`
	Role      identity.Role `json:"role,omitempty"`
	PartnerID *uuid.UUID    `json:"partner_id,omitempty"`
}

// IsEmpty reports whether the target reaches everyone
func (t Target) IsEmpty() bool {
	return t.Channel == "" && t.UserID == nil && t.Role == "" && t.PartnerID == nil
}

// Validate checks the target fields
func (t Target) Validate() error {
	if t.Channel != "" && !ValidChannel(t.Channel) {
		return shared.NewDomainError("INVALID_CHANNEL", fmt.Sprintf("Invalid channel name: %q", t.Channel))
	}
	if t.Role != "" && !t.Role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", fmt.Sprintf("Invalid role: %q", t.Role))
	}
	return nil
}

// Recipient is the view of a connection the router matches against
type Recipient interface {
	UserID() uuid.UUID
	PartnerID() uuid.UUID
	Role() identity.Role
	IsSubscribed(channel string) bool
}

// Matches reports whether r should receive a message sent to t
func (t Target) Matches(r Recipient) bool {
	if t.Channel != "" && !r.IsSubscribed(t.Channel) {
		return false
	}
	if t.UserID != nil && *t.UserID != r.UserID() {
		return false
	}
	if t.Role != "" && t.Role != r.Role() {
		return false
	}
	if t.PartnerID != nil && *t.PartnerID != r.PartnerID() {
		return false
	}
	return true
}

// Message is one realtime notification
type Message struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Target    Target          `json:"target"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage builds a message, encoding payload as JSON
func NewMessage(msgType string, payload any, target Target) (*Message, error) {
	msgType = strings.TrimSpace(msgType)
	if msgType == "" || len(msgType) > 100 {
		return nil, shared.NewDomainError("INVALID_TYPE", "Message type must be 1-100 characters")
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode broadcast payload: %w", err)
		}
		raw = b
	}
	return &Message{
		ID:        uuid.New(),
		Type:      msgType,
		Payload:   raw,
		Target:    target,
		Timestamp: time.Now().UTC(),
	}, nil
}

// CanSubscribe checks whether a user may join channel. Another partner's
// channel or another role's channel requires admin. Another user's private
// channel is never allowed.
func CanSubscribe(role identity.Role, userID, partnerID uuid.UUID, channel string) error {
	if !ValidChannel(channel) {
		return shared.NewDomainError("INVALID_CHANNEL", fmt.Sprintf("Invalid channel name: %q", channel))
	}
	if strings.HasPrefix(channel, partnerChannelPrefix) && channel != PartnerChannel(partnerID) && role != identity.RoleAdmin {
		return shared.ErrForbidden
	}
	if strings.HasPrefix(channel, userChannelPrefix) && channel != UserChannel(userID) {
		return shared.ErrForbidden
	}
	if strings.HasPrefix(channel, rolePrefix) && channel != RoleChannel(role) && role != identity.RoleAdmin {
		return shared.ErrForbidden
	}
	return nil
}
