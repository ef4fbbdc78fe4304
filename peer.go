package huddle

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// MaxDisplayNameLength is the maximum length of display name in bytes.
const MaxDisplayNameLength = 63

var (
	versionTag    = regexp.MustCompile(`\s*\[.*?\]\s*$`)
	versionNumber = regexp.MustCompile(`\[v([0-9][0-9.]*)\]\s*$`)
)

// PeerID identifies a participant. Two identities are equal when their display names are equal.
type PeerID struct {
	name string
}

// NewPeerID creates peer identity from display name.
func NewPeerID(displayName string) (PeerID, error) {
	if err := ValidateDisplayName(displayName); err != nil {
		return PeerID{}, err
	}
	return PeerID{name: displayName}, nil
}

// MustPeerID creates peer identity and panics if display name is invalid.
func MustPeerID(displayName string) PeerID {
	peer, err := NewPeerID(displayName)
	if err != nil {
		panic(err)
	}
	return peer
}

// ValidateDisplayName checks that display name is not blank and fits into MaxDisplayNameLength bytes.
func ValidateDisplayName(displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return errors.Wrap(ErrInvalidDisplayName, "display name is blank")
	}
	if !utf8.ValidString(displayName) {
		return errors.Wrap(ErrInvalidDisplayName, "display name is not valid UTF-8")
	}
	if len(displayName) > MaxDisplayNameLength {
		return errors.Wrapf(ErrInvalidDisplayName, "display name is longer than %d bytes", MaxDisplayNameLength)
	}
	return nil
}

// IsZero returns true if identity has not been set.
func (p PeerID) IsZero() bool {
	return p.name == ""
}

// DisplayName returns the name the peer advertises.
func (p PeerID) DisplayName() string {
	return p.name
}

// DisplayNameWithoutVersion returns display name with trailing bracketed tag removed.
func (p PeerID) DisplayNameWithoutVersion() string {
	return versionTag.ReplaceAllString(p.name, "")
}

// Version returns the version embedded as trailing "[v1.2.3]" tag.
func (p PeerID) Version() (string, bool) {
	match := versionNumber.FindStringSubmatch(p.name)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// String returns display name.
func (p PeerID) String() string {
	return p.name
}
