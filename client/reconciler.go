package client

import (
	"math"

	"go.uber.org/zap"
)

// 位置变化超过该阈值视为移动（浮点误差容忍）
const moveEpsilon = 0.1

// SessionView 快照里一个会话的视图，与服务端广播字段一致
type SessionView struct {
	Username  string  `json:"username"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
	Avatar    string  `json:"avatar"`
}

// Snapshot 服务端推送的全量空间视图：连接 id → 会话视图
type Snapshot map[string]SessionView

// Reconciler 快照对账器：用集合差把快照变成远端实体的增删改。
// 实体状态机只有两态：待加载 → 活跃；资源加载失败的 key 永远停在待加载。
// 全部状态只在 Tick 上下文中读写。
type Reconciler struct {
	selfID string
	loader *AssetLoader
	anims  *AnimRegistry
	stage  *Stage
	log    *zap.SugaredLogger

	tracked map[string]*RemoteEntity // 活跃实体，每个连接 id 至多一个
	pending map[string]SessionView   // 待加载实体的最新期望视图
}

func NewReconciler(selfID string, loader *AssetLoader, anims *AnimRegistry, stage *Stage, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{
		selfID:  selfID,
		loader:  loader,
		anims:   anims,
		stage:   stage,
		log:     log,
		tracked: make(map[string]*RemoteEntity),
		pending: make(map[string]SessionView),
	}
}

// Apply 对账一帧快照：
//  1. 快照里消失的 key：销毁实体与标签，撤销待加载记录；
//  2. 新出现的 key：确保资源与动画就绪后再实例化（加载器负责合流去重）；
//  3. 已跟踪的 key：更新位置，按前后位置差推断是否移动并选剪辑。
func (r *Reconciler) Apply(snap Snapshot) {
	for id, e := range r.tracked {
		if _, ok := snap[id]; !ok {
			e.Destroy()
			delete(r.tracked, id)
		}
	}
	for id := range r.pending {
		if _, ok := snap[id]; !ok {
			// 加载完成前就离开了：撤销期望，滞留的完成回调将被识别为过期
			delete(r.pending, id)
		}
	}

	for id, view := range snap {
		if id == r.selfID {
			continue // 本地实体由输入循环驱动，不吃服务端回显
		}
		if e, ok := r.tracked[id]; ok {
			r.updateEntity(e, view)
			continue
		}
		if _, ok := r.pending[id]; ok {
			// 资源仍在途：只刷新期望视图，不重复排队
			r.pending[id] = view
			continue
		}

		r.pending[id] = view
		id := id // 回调捕获
		r.loader.EnsureLoaded(view.Avatar, func() { r.finishCreate(id) })
	}
}

// finishCreate 资源就绪后的实例化；期望已撤销（玩家已离开）则静默丢弃
func (r *Reconciler) finishCreate(id string) {
	view, ok := r.pending[id]
	if !ok {
		return // 过期完成：对应玩家在加载期间已离开
	}
	asset := r.loader.Asset(view.Avatar)
	if asset == nil {
		return
	}
	r.anims.EnsureAnimations(asset)

	if _, exists := r.tracked[id]; exists {
		delete(r.pending, id)
		return
	}

	dir := view.Direction
	if dir == "" {
		dir = DefaultDirection
	}
	sprite := r.stage.NewSprite(view.Avatar, view.X, view.Y)
	sprite.Play(ClipName(view.Avatar, MotionIdle, dir))
	label := r.stage.NewLabel(view.Username, view.X, view.Y-labelOffsetY)

	r.tracked[id] = &RemoteEntity{
		ConnID: id,
		Sprite: sprite,
		Label:  label,
		LastX:  view.X,
		LastY:  view.Y,
	}
	delete(r.pending, id)
	r.log.Debugf("remote entity created: conn=%s avatar=%s", id, view.Avatar)
}

// updateEntity 更新已跟踪实体：位置、标签随动、按移动与朝向选剪辑
func (r *Reconciler) updateEntity(e *RemoteEntity, view SessionView) {
	moving := math.Abs(view.X-e.LastX) > moveEpsilon || math.Abs(view.Y-e.LastY) > moveEpsilon

	e.Sprite.SetPosition(view.X, view.Y)
	if e.Label != nil {
		e.Label.SetPosition(view.X, view.Y-labelOffsetY)
	}

	dir := view.Direction
	if dir == "" {
		dir = DefaultDirection
	}
	motion := MotionIdle
	if moving {
		motion = MotionWalk
	}
	clip := ClipName(view.Avatar, motion, dir)
	if r.anims.Exists(clip) {
		e.Sprite.Play(clip)
	}

	e.LastX, e.LastY = view.X, view.Y
}

// Entity 按连接 id 取活跃实体；不存在返回 nil
func (r *Reconciler) Entity(id string) *RemoteEntity {
	return r.tracked[id]
}

// TrackedCount 活跃实体数
func (r *Reconciler) TrackedCount() int {
	return len(r.tracked)
}

// PendingCount 待加载实体数
func (r *Reconciler) PendingCount() int {
	return len(r.pending)
}
