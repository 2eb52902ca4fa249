package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws      *websocket.Conn
	send    chan []byte
	metrics *Metrics
	once    sync.Once
}

func NewClientConn(ws *websocket.Conn, queueLen int, metrics *Metrics) *ClientConn {
	return &ClientConn{
		ws:      ws,
		send:    make(chan []byte, queueLen),
		metrics: metrics,
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃旧消息（防止阻塞派发协程）；
		// 丢的是全量快照，下一次广播即可覆盖补齐
		if c.metrics != nil {
			c.metrics.IncSendDrops()
		}
	}
}

// Close 关闭底层连接与发送队列（幂等）
func (c *ClientConn) Close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.ws.Close()
	})
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump 读取客户端事件并转交注册表；首条消息必须是 join
func (c *ClientConn) readPump(reg *Registry, connID string, cfg *Config) {
	defer c.ws.Close()
	// 读泵退出时，统一走注册表在派发协程中移除该会话
	defer reg.Leave(connID)

	pongWait := time.Duration(cfg.PongWaitSec) * time.Second
	c.ws.SetReadLimit(cfg.ReadLimit)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	joined := false
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			continue
		}
		switch strings.ToLower(env.Type) {
		case TypeJoin:
			if joined {
				continue // 重复 join 忽略
			}
			if env.SpaceID == "" {
				// 缺少 spaceId 对该连接致命：直接断开，不重试
				Log.Warnf("join without spaceId: conn=%s, closing", connID)
				c.Close()
				return
			}
			joined = true
			reg.Join(connID, c, env.Username, env.AvatarKey, env.SpaceID)
		case TypeMove:
			// 未加入的 move 由注册表按孤儿事件丢弃并告警
			reg.Move(connID, env.X, env.Y, env.Direction, env.Avatar)
		case TypeChatSend:
			reg.Chat(connID, env.Text)
		default:
			// 未知类型忽略
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// NewWSHandler WebSocket 接入：升级连接、分配连接 id、启动读写泵
// 身份信息（空间/用户名/头像）由首条 join 消息携带
func NewWSHandler(reg *Registry, cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			Log.Warnf("upgrade error: %v", err)
			return
		}

		connID := uuid.NewString()
		client := NewClientConn(ws, cfg.SendQueueLen, reg.Metrics())

		go client.writePump()
		go client.readPump(reg, connID, cfg)
	}
}
