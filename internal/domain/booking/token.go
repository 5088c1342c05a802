package booking

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidTokenPrefix   = errors.New("token prefix must be three letters")
	ErrInvalidTokenSequence = errors.New("token sequence must be between 1 and 999")
	ErrInvalidTokenFormat   = errors.New("token does not match expected format")
)

const emergencyMarker = "E"

// TokenPattern is the wire format of a token number: three-letter
// hospital prefix, optional emergency marker, three-digit sequence.
var TokenPattern = regexp.MustCompile(`^[A-Z]{3}E?\d{3}$`)

// legacyTokenPattern matches tokens issued before prefixes existed,
// which were bare sequence numbers.
var legacyTokenPattern = regexp.MustCompile(`^\d+$`)

// TokenNumber is the human-readable per-hospital-per-day booking
// identifier. It is allocated once at creation and never reassigned
// outside the explicit legacy backfill.
type TokenNumber struct {
	value string
}

// AllocateToken builds the token for the seq-th booking of a hospital's
// day. seq is 1-based creation order within (hospital, calendar day).
func AllocateToken(prefix string, seq int, emergency bool) (TokenNumber, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if len(prefix) != 3 || !isLetters(prefix) {
		return TokenNumber{}, ErrInvalidTokenPrefix
	}
	if seq < 1 || seq > 999 {
		return TokenNumber{}, ErrInvalidTokenSequence
	}
	marker := ""
	if emergency {
		marker = emergencyMarker
	}
	return TokenNumber{value: fmt.Sprintf("%s%s%03d", prefix, marker, seq)}, nil
}

// ParseToken validates a persisted token string.
func ParseToken(s string) (TokenNumber, error) {
	if !TokenPattern.MatchString(s) {
		return TokenNumber{}, ErrInvalidTokenFormat
	}
	return TokenNumber{value: s}, nil
}

// ReconstructToken rehydrates a stored token without format checks, so
// legacy numeric tokens survive a round trip until the backfill runs.
func ReconstructToken(s string) TokenNumber {
	return TokenNumber{value: s}
}

// IsLegacyToken reports whether a stored token predates the prefixed
// format and is eligible for the backfill migration.
func IsLegacyToken(s string) bool {
	return legacyTokenPattern.MatchString(s)
}

func (t TokenNumber) String() string {
	return t.value
}

func (t TokenNumber) IsZero() bool {
	return t.value == ""
}

// IsEmergency reports whether the token carries the emergency marker.
func (t TokenNumber) IsEmergency() bool {
	return len(t.value) == 7 && t.value[3:4] == emergencyMarker
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
