package server

import (
	"math/rand"
	"time"
)

// cmdKind 注册表指令类型（带标签的变体，边界处已完成载荷校验）
type cmdKind int

const (
	cmdJoin cmdKind = iota
	cmdMove
	cmdChat
	cmdLeave
)

// command 派发协程消费的指令；同一连接的指令按到达顺序处理
type command struct {
	kind   cmdKind
	connID string

	// join
	conn      Conn
	username  string
	avatarKey string
	spaceID   string

	// move
	x, y      float64
	direction string
	avatar    string

	// chat
	text string
}

// Registry 空间/会话注册表：进程级对象，由 main 创建后传入各处理器
// 全部状态只在 Run 的单一派发协程中读写，无需加锁
type Registry struct {
	cfg     *Config
	spaces  map[string]*Space
	cmds    chan command
	done    chan struct{}
	metrics *Metrics
	rng     *rand.Rand
}

// NewRegistry 创建注册表（尚未启动派发协程）
func NewRegistry(cfg *Config) *Registry {
	return &Registry{
		cfg:     cfg,
		spaces:  make(map[string]*Space),
		cmds:    make(chan command, cfg.CmdQueueLen),
		done:    make(chan struct{}),
		metrics: &Metrics{},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run 派发循环：每条指令跑完再取下一条，保证状态一致性
func (r *Registry) Run() {
	for {
		select {
		case cmd := <-r.cmds:
			r.dispatch(cmd)
		case <-r.done:
			return
		}
	}
}

// Stop 停止派发循环
func (r *Registry) Stop() {
	close(r.done)
}

// Metrics 返回计数器（供 /metrics 输出）
func (r *Registry) Metrics() *Metrics {
	return r.metrics
}

// Join 入队加入请求；spaceID 为空在边界已拒绝，这里兜底再查一次
func (r *Registry) Join(connID string, conn Conn, username, avatarKey, spaceID string) {
	r.cmds <- command{kind: cmdJoin, connID: connID, conn: conn,
		username: username, avatarKey: avatarKey, spaceID: spaceID}
}

// Move 入队移动事件
func (r *Registry) Move(connID string, x, y float64, direction, avatar string) {
	r.cmds <- command{kind: cmdMove, connID: connID, x: x, y: y,
		direction: direction, avatar: avatar}
}

// Chat 入队聊天消息
func (r *Registry) Chat(connID, text string) {
	r.cmds <- command{kind: cmdChat, connID: connID, text: text}
}

// Leave 入队离开（断连与正常离开同路径处理）
func (r *Registry) Leave(connID string) {
	r.cmds <- command{kind: cmdLeave, connID: connID}
}

func (r *Registry) dispatch(cmd command) {
	switch cmd.kind {
	case cmdJoin:
		r.handleJoin(cmd)
	case cmdMove:
		r.handleMove(cmd)
	case cmdChat:
		r.handleChat(cmd)
	case cmdLeave:
		r.handleLeave(cmd)
	}
}

// handleJoin 创建会话并订阅空间广播；空 spaceID 对该连接致命
func (r *Registry) handleJoin(cmd command) {
	if cmd.spaceID == "" {
		Log.Warnf("join without spaceId: conn=%s, closing", cmd.connID)
		if cmd.conn != nil {
			cmd.conn.Close()
		}
		return
	}

	sp, ok := r.spaces[cmd.spaceID]
	if !ok {
		sp = NewSpace(cmd.spaceID, r.cfg.ChatLogMax)
		r.spaces[cmd.spaceID] = sp
		r.metrics.SetSpaces(int64(len(r.spaces)))
		Log.Infof("space created: %s", cmd.spaceID)
	}

	sess := &Session{
		ConnID:    cmd.connID,
		Username:  cmd.username,
		X:         r.rng.Float64() * r.cfg.WorldWidth,
		Y:         r.rng.Float64() * r.cfg.WorldHeight,
		Direction: DefaultDirection,
		AvatarKey: cmd.avatarKey,
		SpaceID:   cmd.spaceID,
		Conn:      cmd.conn,
	}
	sp.Sessions[cmd.connID] = sess
	r.metrics.IncJoins()
	Log.Infof("join: conn=%s user=%s space=%s avatar=%s", cmd.connID, cmd.username, cmd.spaceID, cmd.avatarKey)

	// 新成员一次性补发已有聊天记录
	if log := sp.ChatLog(); len(log) > 0 && cmd.conn != nil {
		cmd.conn.Enqueue(chatHistoryBytes(log))
	}

	r.broadcastSnapshot(sp)
}

// handleMove 更新会话位置朝向并重新广播；找不到归属空间则丢弃
func (r *Registry) handleMove(cmd command) {
	sp, sess := r.findSession(cmd.connID)
	if sess == nil {
		r.metrics.IncOrphanMoves()
		Log.Warnf("move from unknown conn=%s, dropped", cmd.connID)
		return
	}

	sess.X = cmd.x
	sess.Y = cmd.y
	if dir, ok := ParseDirection(cmd.direction); ok {
		sess.Direction = dir
	}
	if cmd.avatar != "" {
		sess.AvatarKey = cmd.avatar
	}
	r.metrics.IncMoves()

	r.broadcastSnapshot(sp)
}

// handleChat 追加聊天记录并广播单条消息（不重发整个记录）
func (r *Registry) handleChat(cmd command) {
	sp, sess := r.findSession(cmd.connID)
	if sess == nil {
		r.metrics.IncOrphanChats()
		Log.Warnf("chat from unknown conn=%s, dropped", cmd.connID)
		return
	}

	msg := ChatMessage{
		SenderID:       sess.ConnID,
		SenderUsername: sess.Username,
		Text:           cmd.text,
		Timestamp:      time.Now().UnixMilli(),
	}
	sp.AppendChat(msg)
	r.metrics.IncChats()

	sp.Broadcast(chatMessageBytes(msg))
}

// handleLeave 移除会话；空间清空则立即销毁，否则向余下成员广播
func (r *Registry) handleLeave(cmd command) {
	sp, sess := r.findSession(cmd.connID)
	if sess == nil {
		return // 未加入或已移除，幂等
	}

	if sess.Conn != nil {
		sess.Conn.Close()
	}
	delete(sp.Sessions, cmd.connID)
	r.metrics.IncLeaves()
	Log.Infof("leave: conn=%s space=%s", cmd.connID, sp.ID)

	if sp.Empty() {
		delete(r.spaces, sp.ID)
		r.metrics.SetSpaces(int64(len(r.spaces)))
		Log.Infof("space empty, destroyed: %s", sp.ID)
		return
	}
	r.broadcastSnapshot(sp)
}

// findSession 按成员关系扫描空间定位连接（空间数量级下 O(spaces) 可接受）
func (r *Registry) findSession(connID string) (*Space, *Session) {
	for _, sp := range r.spaces {
		if sess, ok := sp.Sessions[connID]; ok {
			return sp, sess
		}
	}
	return nil, nil
}

// broadcastSnapshot 任意变更后推送整个空间的全量快照
// 无序号补偿：慢客户端用最后收到的快照覆盖本地视图即可收敛
func (r *Registry) broadcastSnapshot(sp *Space) {
	b := snapshotBytes(sp.Snapshot())
	sp.Broadcast(b)
	r.metrics.IncSnapshots()
	Log.Debugf("snapshot: space=%s members=%d bytes=%d", sp.ID, len(sp.Sessions), len(b))
}
