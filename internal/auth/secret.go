package auth

import (
	"errors"
	"strings"
)

// ErrEmptySecret is returned when the configured signing secret is blank.
var ErrEmptySecret = errors.New("auth: signing secret is empty")

// Secret is the process-wide HMAC signing key. It is immutable once loaded and
// redacts itself when formatted so it never reaches logs.
type Secret struct {
	key []byte
}

// LoadSecret validates raw and returns the signing key handle.
func LoadSecret(raw string) (Secret, error) {
	if strings.TrimSpace(raw) == "" {
		return Secret{}, ErrEmptySecret
	}
	key := make([]byte, len(raw))
	copy(key, raw)
	return Secret{key: key}, nil
}

// MustLoadSecret is LoadSecret for fixtures and startup code that cannot continue without a key.
func MustLoadSecret(raw string) Secret {
	s, err := LoadSecret(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// IsZero reports whether the secret was never loaded.
func (s Secret) IsZero() bool {
	return len(s.key) == 0
}

func (s Secret) String() string {
	return "[REDACTED]"
}

func (s Secret) GoString() string {
	return "auth.Secret{[REDACTED]}"
}

func (s Secret) bytes() []byte {
	return s.key
}
