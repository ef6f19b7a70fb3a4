package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Rights is the ordered capability level attached to a user and cached on
// their session. Admin implies Chat.
type Rights int

const (
	NoRights Rights = iota
	Chat
	Admin
)

var rightsNames = map[Rights]string{
	NoRights: "NoRights",
	Chat:     "Chat",
	Admin:    "Admin",
}

func (r Rights) String() string {
	if s, ok := rightsNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Rights(%d)", int(r))
}

// AtLeast reports whether r grants the capabilities of min.
func (r Rights) AtLeast(min Rights) bool {
	return r >= min
}

// ParseRights converts the stored string form back into a Rights value.
func ParseRights(s string) (Rights, error) {
	for r, name := range rightsNames {
		if name == s {
			return r, nil
		}
	}
	return NoRights, fmt.Errorf("unknown rights level %q", s)
}

// MarshalJSON renders rights by name so API payloads and stored records stay
// readable.
func (r Rights) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rights) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRights(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrUnknownModel = errors.New("unknown model")
var ErrInvalidSession = errors.New("invalid session")
var ErrLoginThrottled = errors.New("too many failed login attempts")

// ErrSessionInvariant marks a state the protocol guarantees cannot happen,
// such as a token that passed validation no longer mapping to a session.
// Seeing it means a concurrency bug, not a routine failure.
var ErrSessionInvariant = errors.New("session table invariant violated")

// UserRecord is the durable record of a user. The per-user EncryptionKey is
// used only to seal that user's session tokens.
type UserRecord struct {
	Identity      uuid.UUID `json:"identity"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Rights        Rights    `json:"rights"`
	Credit        float64   `json:"credit"`
	EncryptionKey []byte    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
