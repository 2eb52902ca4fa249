package server

// Direction 朝向，与线上协议一致使用字符串
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// DefaultDirection 新会话的初始朝向
const DefaultDirection = DirDown

// ParseDirection 校验并归一化朝向字符串；非法输入返回 false
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirUp, DirDown, DirLeft, DirRight:
		return Direction(s), true
	}
	return "", false
}

// Conn 会话持有的网络发送端；由 ClientConn 实现，测试中可替换为内存实现
type Conn interface {
	Enqueue(b []byte)
	Close()
}

// Session 空间内一个在线参与者的权威状态，仅在派发协程中读写
type Session struct {
	ConnID    string
	Username  string
	X         float64
	Y         float64
	Direction Direction
	AvatarKey string
	SpaceID   string

	Conn Conn // 网络连接的发送端（写协程）
}

// View 生成广播用的只读视图
func (s *Session) View() PlayerView {
	return PlayerView{
		Username:  s.Username,
		X:         s.X,
		Y:         s.Y,
		Direction: string(s.Direction),
		Avatar:    s.AvatarKey,
	}
}
