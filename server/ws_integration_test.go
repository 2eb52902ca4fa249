package server

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metaspace/client"
)

// collector 线程安全地收集下行事件
type collector struct {
	mu    sync.Mutex
	snaps []client.Snapshot
	chats []client.ChatEntry
}

func (c *collector) onSnapshot(s client.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, s)
}

func (c *collector) onChat(m client.ChatEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chats = append(c.chats, m)
}

func (c *collector) lastSnapshot() (client.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snaps) == 0 {
		return nil, false
	}
	return c.snaps[len(c.snaps)-1], true
}

func (c *collector) chatCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chats)
}

func startTestServer(t *testing.T) (*Registry, string) {
	t.Helper()
	cfg := DefaultConfig()
	reg := NewRegistry(cfg)
	go reg.Run()
	t.Cleanup(reg.Stop)

	srv := httptest.NewServer(NewWSHandler(reg, cfg))
	t.Cleanup(srv.Close)
	return reg, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketJoinMoveChatRoundTrip(t *testing.T) {
	_, url := startTestServer(t)

	colA := &collector{}
	cA, err := client.Dial(url, nil)
	require.NoError(t, err)
	defer cA.Close()
	cA.OnSnapshot = colA.onSnapshot
	cA.OnChat = colA.onChat
	go cA.ReadLoop()

	require.NoError(t, cA.Join("alice", "fox", "S1"))
	require.Eventually(t, func() bool {
		snap, ok := colA.lastSnapshot()
		return ok && len(snap) == 1
	}, 2*time.Second, 10*time.Millisecond, "A should see itself after join")

	colB := &collector{}
	cB, err := client.Dial(url, nil)
	require.NoError(t, err)
	defer cB.Close()
	cB.OnSnapshot = colB.onSnapshot
	cB.OnChat = colB.onChat
	go cB.ReadLoop()

	require.NoError(t, cB.Join("bob", "owl", "S1"))
	require.Eventually(t, func() bool {
		snap, ok := colA.lastSnapshot()
		return ok && len(snap) == 2
	}, 2*time.Second, 10*time.Millisecond, "A should see B join")

	// B 上行一次移动，A 应看到新位置与朝向
	cB.SendMove(client.MoveEvent{X: 120, Y: 80, Direction: "left", Avatar: "owl"})
	require.Eventually(t, func() bool {
		snap, ok := colA.lastSnapshot()
		if !ok {
			return false
		}
		for _, v := range snap {
			if v.X == 120 && v.Y == 80 && v.Direction == "left" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "A should observe B's move")

	// 聊天广播到双方
	require.NoError(t, cA.SendChat("hello"))
	require.Eventually(t, func() bool {
		return colA.chatCount() == 1 && colB.chatCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// B 断开后 A 的快照只剩自己
	cB.Close()
	require.Eventually(t, func() bool {
		snap, ok := colA.lastSnapshot()
		return ok && len(snap) == 1
	}, 2*time.Second, 10*time.Millisecond, "A should see B removed after disconnect")
}

func TestWebSocketJoinWithoutSpaceIDCloses(t *testing.T) {
	_, url := startTestServer(t)

	c, err := client.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Join("alice", "fox", ""))

	done := make(chan struct{})
	go func() {
		c.ReadLoop() // 服务端断开后返回
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not close connection on empty spaceId")
	}
}

func TestWebSocketLateJoinReceivesChatHistory(t *testing.T) {
	_, url := startTestServer(t)

	cA, err := client.Dial(url, nil)
	require.NoError(t, err)
	defer cA.Close()
	go cA.ReadLoop()
	require.NoError(t, cA.Join("alice", "fox", "S1"))
	require.NoError(t, cA.SendChat("early message"))

	time.Sleep(50 * time.Millisecond) // 让消息先入库

	var mu sync.Mutex
	var history []client.ChatEntry
	cB, err := client.Dial(url, nil)
	require.NoError(t, err)
	defer cB.Close()
	cB.OnHistory = func(msgs []client.ChatEntry) {
		mu.Lock()
		defer mu.Unlock()
		history = msgs
	}
	go cB.ReadLoop()
	require.NoError(t, cB.Join("bob", "owl", "S1"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(history) == 1
	}, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, "early message", history[0].Text)
	mu.Unlock()
}
