package game

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeUsername(t *testing.T) {
	require.Equal(t, "alice", NormalizeUsername("  Alice "))
	require.Equal(t, "bob", NormalizeUsername("BOB"))
	require.Equal(t, "", NormalizeUsername("   "))
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, 64)

	other, err := GenerateToken()
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestPlayerByToken(t *testing.T) {
	game := &Game{Players: []Player{
		{Username: "alice", Token: "tok-a"},
		{Username: "bob", Token: "tok-b"},
	}}

	player := game.PlayerByToken("tok-b")
	require.NotNil(t, player)
	require.Equal(t, "bob", player.Username)

	require.Nil(t, game.PlayerByToken("missing"))
}
