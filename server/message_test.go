package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeDecodesTaggedVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Envelope
	}{
		{
			name: "join",
			raw:  `{"type":"join","username":"alice","avatarKey":"fox","spaceId":"S1"}`,
			want: Envelope{Type: "join", Username: "alice", AvatarKey: "fox", SpaceID: "S1"},
		},
		{
			name: "move",
			raw:  `{"type":"move","x":120,"y":80,"direction":"left","avatar":"fox"}`,
			want: Envelope{Type: "move", X: 120, Y: 80, Direction: "left", Avatar: "fox"},
		},
		{
			name: "chat-send",
			raw:  `{"type":"chat-send","text":"hi"}`,
			want: Envelope{Type: "chat-send", Text: "hi"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var env Envelope
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &env))
			assert.Equal(t, tc.want, env)
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down", "left", "right"} {
		dir, ok := ParseDirection(s)
		assert.True(t, ok)
		assert.Equal(t, Direction(s), dir)
	}
	for _, s := range []string{"", "diagonal", "UP", "north"} {
		_, ok := ParseDirection(s)
		assert.False(t, ok, "should reject %q", s)
	}
}

func TestSnapshotBytesShape(t *testing.T) {
	b := snapshotBytes(map[string]PlayerView{
		"A": {Username: "alice", X: 1, Y: 2, Direction: "down", Avatar: "fox"},
	})

	var got struct {
		Type    string                `json:"type"`
		Players map[string]PlayerView `json:"players"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, TypeSnapshot, got.Type)
	assert.Equal(t, "fox", got.Players["A"].Avatar)
}

func TestChatMessageBytesShape(t *testing.T) {
	b := chatMessageBytes(ChatMessage{SenderID: "A", SenderUsername: "alice", Text: "hi", Timestamp: 42})

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "chat-message", got["type"])
	assert.Equal(t, "A", got["senderId"])
	assert.Equal(t, "alice", got["senderUsername"])
	assert.Equal(t, "hi", got["text"])
	assert.Equal(t, float64(42), got["timestamp"])
}
