package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChatEntry 服务端聊天消息载荷（chat-message / chat-history 条目）
type ChatEntry struct {
	SenderID       string `json:"senderId"`
	SenderUsername string `json:"senderUsername"`
	Text           string `json:"text"`
	Timestamp      int64  `json:"timestamp"`
}

// serverEvent 下行统一信封，由 type 区分 snapshot/chat-message/chat-history
type serverEvent struct {
	Type     string                 `json:"type"`
	Players  map[string]SessionView `json:"players,omitempty"`
	Messages []ChatEntry            `json:"messages,omitempty"`
	ChatEntry
}

// NetClient 客户端传输绑定：上行 join/move/chat-send，
// 下行事件解码后分发给回调（通常接到 Scene.OfferSnapshot 与聊天 UI）
type NetClient struct {
	ws  *websocket.Conn
	log *zap.SugaredLogger
	mu  sync.Mutex // 序列化并发写

	OnSnapshot func(Snapshot)
	OnChat     func(ChatEntry)
	OnHistory  func([]ChatEntry)
}

// Dial 建立 WebSocket 连接；url 形如 "ws://host:8080/ws"
func Dial(url string, log *zap.SugaredLogger) (*NetClient, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &NetClient{ws: ws, log: log}, nil
}

func (c *NetClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

// Join 首条消息必须是 join，携带空间/用户名/头像
func (c *NetClient) Join(username, avatarKey, spaceID string) error {
	return c.writeJSON(map[string]any{
		"type":      "join",
		"username":  username,
		"avatarKey": avatarKey,
		"spaceId":   spaceID,
	})
}

// SendMove 上行一次移动事件；可直接作为 Scene 的 emit 出口
func (c *NetClient) SendMove(ev MoveEvent) {
	err := c.writeJSON(map[string]any{
		"type":      "move",
		"x":         ev.X,
		"y":         ev.Y,
		"direction": ev.Direction,
		"avatar":    ev.Avatar,
	})
	if err != nil {
		c.log.Warnf("send move: %v", err)
	}
}

// SendChat 上行一条聊天消息
func (c *NetClient) SendChat(text string) error {
	return c.writeJSON(map[string]any{"type": "chat-send", "text": text})
}

// ReadLoop 阻塞读取下行事件并分发回调；连接断开时返回
func (c *NetClient) ReadLoop() {
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			c.log.Infof("connection closed: %v", err)
			return
		}
		var ev serverEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			continue
		}
		switch ev.Type {
		case "snapshot":
			if c.OnSnapshot != nil {
				c.OnSnapshot(Snapshot(ev.Players))
			}
		case "chat-message":
			if c.OnChat != nil {
				c.OnChat(ev.ChatEntry)
			}
		case "chat-history":
			if c.OnHistory != nil {
				c.OnHistory(ev.Messages)
			}
		}
	}
}

// Close 关闭底层连接
func (c *NetClient) Close() {
	_ = c.ws.Close()
}
