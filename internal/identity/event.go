// Package identity decodes and verifies user lifecycle events pushed by the
// identity provider's webhook.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	TypeUserCreated = "user.created"
	TypeUserUpdated = "user.updated"
	TypeUserDeleted = "user.deleted"
)

var ErrMalformedEvent = errors.New("malformed event")

// Event is one of UserCreated, UserUpdated, UserDeleted or UnknownEvent.
type Event interface {
	Type() string
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserData is the user object carried by created/updated events.
type UserData struct {
	ID                    string         `json:"id"`
	Username              *string        `json:"username"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
	ImageURL              *string        `json:"image_url"`
	ProfileImageURL       *string        `json:"profile_image_url"`
}

// PrimaryEmail returns the address flagged as primary, else the first one.
func (u UserData) PrimaryEmail() string {
	if u.PrimaryEmailAddressID != nil {
		for _, e := range u.EmailAddresses {
			if e.ID == *u.PrimaryEmailAddressID {
				return e.EmailAddress
			}
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (u UserData) AvatarURL() string {
	if v := deref(u.ImageURL); v != "" {
		return v
	}
	return deref(u.ProfileImageURL)
}

type UserCreated struct{ User UserData }

type UserUpdated struct{ User UserData }

// UserDeleted carries only the external id; the provider sends a stub object.
type UserDeleted struct {
	ExternalID string
}

// UnknownEvent is any event type this service does not act on.
type UnknownEvent struct {
	EventType string
}

func (UserCreated) Type() string    { return TypeUserCreated }
func (UserUpdated) Type() string    { return TypeUserUpdated }
func (UserDeleted) Type() string    { return TypeUserDeleted }
func (e UnknownEvent) Type() string { return e.EventType }

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode parses a verified webhook body into its typed variant. Known user
// events without data.id are rejected with ErrMalformedEvent.
func Decode(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if strings.TrimSpace(env.Type) == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	switch env.Type {
	case TypeUserCreated, TypeUserUpdated:
		var data UserData
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.ID == "" {
			return nil, fmt.Errorf("%w: %s without data.id", ErrMalformedEvent, env.Type)
		}
		if env.Type == TypeUserCreated {
			return UserCreated{User: data}, nil
		}
		return UserUpdated{User: data}, nil
	case TypeUserDeleted:
		var data struct {
			ID string `json:"id"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.ID == "" {
			return nil, fmt.Errorf("%w: %s without data.id", ErrMalformedEvent, env.Type)
		}
		return UserDeleted{ExternalID: data.ID}, nil
	default:
		return UnknownEvent{EventType: env.Type}, nil
	}
}

func decodeData(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
