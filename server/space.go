package server

// Space 一个共享空间：在线会话集合 + 有界聊天记录
// 首次 join 惰性创建，会话清空后立即销毁；仅在派发协程中读写
type Space struct {
	ID       string
	Sessions map[string]*Session

	chat    []ChatMessage
	chatMax int
}

// NewSpace 创建空间，chatMax 为聊天记录上限
func NewSpace(id string, chatMax int) *Space {
	return &Space{
		ID:       id,
		Sessions: make(map[string]*Session),
		chatMax:  chatMax,
	}
}

// AppendChat 追加一条聊天记录，超出上限时从头部驱逐（FIFO）
func (s *Space) AppendChat(msg ChatMessage) {
	s.chat = append(s.chat, msg)
	for len(s.chat) > s.chatMax {
		s.chat = s.chat[1:]
	}
}

// ChatLog 返回聊天记录的副本（按插入顺序）
func (s *Space) ChatLog() []ChatMessage {
	out := make([]ChatMessage, len(s.chat))
	copy(out, s.chat)
	return out
}

// Snapshot 生成当前空间的全量视图
func (s *Space) Snapshot() map[string]PlayerView {
	players := make(map[string]PlayerView, len(s.Sessions))
	for id, sess := range s.Sessions {
		players[id] = sess.View()
	}
	return players
}

// Broadcast 将消息发给空间内全部成员（非阻塞入队）
func (s *Space) Broadcast(b []byte) {
	for _, sess := range s.Sessions {
		if sess.Conn != nil {
			sess.Conn.Enqueue(b)
		}
	}
}

// Empty 会话集合是否已清空
func (s *Space) Empty() bool {
	return len(s.Sessions) == 0
}
