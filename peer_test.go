package huddle_test

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/huddle"
)

func TestNewPeerID(t *testing.T) {
	requireT := require.New(t)

	peer, err := huddle.NewPeerID("alice")
	requireT.NoError(err)
	requireT.Equal("alice", peer.DisplayName())
	requireT.Equal("alice", peer.String())
	requireT.False(peer.IsZero())
	requireT.Equal(huddle.MustPeerID("alice"), peer)
	requireT.NotEqual(huddle.MustPeerID("bob"), peer)

	_, err = huddle.NewPeerID(strings.Repeat("a", huddle.MaxDisplayNameLength))
	requireT.NoError(err)
}

func TestInvalidDisplayName(t *testing.T) {
	requireT := require.New(t)

	for _, name := range []string{
		"",
		"   ",
		"\t\n",
		strings.Repeat("a", huddle.MaxDisplayNameLength+1),
		strings.Repeat("é", 32),
		"\xff",
	} {
		_, err := huddle.NewPeerID(name)
		requireT.True(errors.Is(err, huddle.ErrInvalidDisplayName), name)
	}

	requireT.Panics(func() {
		huddle.MustPeerID(" ")
	})
}

func TestDisplayNameWithoutVersion(t *testing.T) {
	requireT := require.New(t)

	requireT.Equal("alice", huddle.MustPeerID("alice [v1.2.3]").DisplayNameWithoutVersion())
	requireT.Equal("alice", huddle.MustPeerID("alice[v1]  ").DisplayNameWithoutVersion())
	requireT.Equal("alice", huddle.MustPeerID("alice [beta]").DisplayNameWithoutVersion())
	requireT.Equal("alice", huddle.MustPeerID("alice").DisplayNameWithoutVersion())
	requireT.Equal("[v1] alice", huddle.MustPeerID("[v1] alice").DisplayNameWithoutVersion())
}

func TestVersion(t *testing.T) {
	requireT := require.New(t)

	version, ok := huddle.MustPeerID("alice [v1.2.3]").Version()
	requireT.True(ok)
	requireT.Equal("1.2.3", version)

	version, ok = huddle.MustPeerID("bob[v2]").Version()
	requireT.True(ok)
	requireT.Equal("2", version)

	_, ok = huddle.MustPeerID("carol").Version()
	requireT.False(ok)

	_, ok = huddle.MustPeerID("dave [vbeta]").Version()
	requireT.False(ok)

	_, ok = huddle.MustPeerID("[v1.0] erin").Version()
	requireT.False(ok)
}
