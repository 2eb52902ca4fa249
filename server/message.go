package server

import "encoding/json"

// 协议事件名，双方按位精确匹配
const (
	TypeJoin        = "join"
	TypeMove        = "move"
	TypeChatSend    = "chat-send"
	TypeSnapshot    = "snapshot"
	TypeChatMessage = "chat-message"
	TypeChatHistory = "chat-history"
)

// Envelope 入站统一信封：由 type 字段区分 join/move/chat-send
// 示例：{"type":"move","x":120,"y":80,"direction":"left","avatar":"player1"}
type Envelope struct {
	Type string `json:"type"`
	// join
	Username  string `json:"username,omitempty"`
	AvatarKey string `json:"avatarKey,omitempty"`
	SpaceID   string `json:"spaceId,omitempty"`
	// move
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Avatar    string  `json:"avatar,omitempty"`
	// chat-send
	Text string `json:"text,omitempty"`
	// 客户端本地序列号，预留字段，当前不参与排序（最后写入者胜出）
	Seq int64 `json:"seq,omitempty"`
}

// PlayerView 广播给客户端的轻量会话视图
type PlayerView struct {
	Username  string  `json:"username"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
	Avatar    string  `json:"avatar"`
}

// ChatMessage 单条聊天记录，入库后不可变
type ChatMessage struct {
	SenderID       string `json:"senderId"`
	SenderUsername string `json:"senderUsername"`
	Text           string `json:"text"`
	Timestamp      int64  `json:"timestamp"` // Unix 毫秒
}

// snapshotBytes 构造全量快照广播（整个空间的会话视图，非增量）
func snapshotBytes(players map[string]PlayerView) []byte {
	payload := struct {
		Type    string                `json:"type"`
		Players map[string]PlayerView `json:"players"`
	}{Type: TypeSnapshot, Players: players}
	b, _ := json.Marshal(payload)
	return b
}

// chatMessageBytes 构造单条聊天广播
func chatMessageBytes(msg ChatMessage) []byte {
	payload := struct {
		Type string `json:"type"`
		ChatMessage
	}{Type: TypeChatMessage, ChatMessage: msg}
	b, _ := json.Marshal(payload)
	return b
}

// chatHistoryBytes 构造加入时的一次性聊天补发
func chatHistoryBytes(msgs []ChatMessage) []byte {
	payload := struct {
		Type     string        `json:"type"`
		Messages []ChatMessage `json:"messages"`
	}{Type: TypeChatHistory, Messages: msgs}
	b, _ := json.Marshal(payload)
	return b
}
