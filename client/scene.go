package client

import (
	"time"

	"go.uber.org/zap"
)

// SceneConfig 场景启动参数；SelfID 来自传输层握手分配的连接 id
type SceneConfig struct {
	SelfID    string
	Username  string
	AvatarKey string

	SpawnX, SpawnY          float64
	WorldWidth, WorldHeight float64
	Speed                   float64 // 像素/秒，0 取默认 250

	Log *zap.SugaredLogger
}

// 本地移动速度缺省值（像素/秒）
const defaultSpeed = 250

// Scene 单线程协作调度器：输入、物理、对账、区域检测按固定 Tick 推进。
// 资源加载与网络 I/O 异步进行，完成事件投递到队列，由之后的 Tick 消费；
// 场景关闭后滞留的完成事件一律丢弃（防止对已拆除状态实例化）。
type Scene struct {
	log    *zap.SugaredLogger
	stage  *Stage
	loader *AssetLoader
	anims  *AnimRegistry
	rec    *Reconciler
	local  *LocalPlayer
	zones  *ZoneWatcher

	completions chan func()       // 异步完成回调，Tick 开头排空
	snapshots   chan Snapshot     // 网络快照收件箱，只保留最新
	controls    chan ControlEvent // 发往 UI 层的控制信号

	avatarKey string
	alive     bool
	stop      chan struct{}
}

// NewScene 组装场景并预取本地头像；emit 为上行 move 的出口
func NewScene(cfg SceneConfig, source AssetSource, emit func(MoveEvent)) *Scene {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	speed := cfg.Speed
	if speed == 0 {
		speed = defaultSpeed
	}

	s := &Scene{
		log:         log,
		stage:       NewStage(),
		anims:       NewAnimRegistry(),
		completions: make(chan func(), 64),
		snapshots:   make(chan Snapshot, 1),
		controls:    make(chan ControlEvent, 16),
		avatarKey:   cfg.AvatarKey,
		alive:       true,
		stop:        make(chan struct{}),
	}
	s.loader = NewAssetLoader(source, s.postCompletion, log)
	s.rec = NewReconciler(cfg.SelfID, s.loader, s.anims, s.stage, log)
	s.local = NewLocalPlayer(cfg.AvatarKey, s.anims, speed, cfg.WorldWidth, cfg.WorldHeight, emit)
	s.zones = NewZoneWatcher(s.pushControl)

	// 预取本地头像：就绪后创建本地精灵并进入初始 idle
	s.loader.EnsureLoaded(cfg.AvatarKey, func() {
		asset := s.loader.Asset(cfg.AvatarKey)
		s.anims.EnsureAnimations(asset)
		sprite := s.stage.NewSprite(cfg.AvatarKey, cfg.SpawnX, cfg.SpawnY)
		sprite.Play(ClipName(cfg.AvatarKey, MotionIdle, DefaultDirection))
		s.local.attach(sprite)
	})

	return s
}

// postCompletion 异步完成投递（任意协程可调，满则丢弃并告警）
func (s *Scene) postCompletion(fn func()) {
	select {
	case s.completions <- fn:
	default:
		s.log.Warnf("completion queue full, dropped")
	}
}

// pushControl 控制信号非阻塞入队（UI 不取也不阻塞模拟）
func (s *Scene) pushControl(ev ControlEvent) {
	select {
	case s.controls <- ev:
	default:
		s.log.Warnf("control queue full, dropped: %T", ev)
	}
}

// Controls UI 层消费的控制信号通道
func (s *Scene) Controls() <-chan ControlEvent {
	return s.controls
}

// AddZone 声明一个触发区域
func (s *Scene) AddZone(name string, rect Rect) {
	s.zones.AddZone(name, rect)
}

// RequestAudioToggle UI 请求切换静音（与区域信号走同一条类型化通道）
func (s *Scene) RequestAudioToggle() {
	s.pushControl(ToggleAudio{})
}

// OfferSnapshot 网络协程投递快照；收件箱只保留最新一帧，
// 旧帧直接覆盖（全量快照下慢客户端收敛到最后一帧即可）
func (s *Scene) OfferSnapshot(snap Snapshot) {
	for {
		select {
		case s.snapshots <- snap:
			return
		default:
			select {
			case <-s.snapshots:
			default:
			}
		}
	}
}

// Reconciler 暴露对账器（只应在 Tick 上下文使用）
func (s *Scene) Reconciler() *Reconciler {
	return s.rec
}

// LocalPlayer 暴露本地实体（只应在 Tick 上下文使用）
func (s *Scene) LocalPlayer() *LocalPlayer {
	return s.local
}

// Stage 暴露渲染句柄登记
func (s *Scene) Stage() *Stage {
	return s.stage
}

// Tick 推进一帧：排空完成回调 → 应用最新快照 → 本地输入 → 区域检测
func (s *Scene) Tick(dt float64, in InputState) {
	if !s.alive {
		return
	}

	s.drainCompletions()

	select {
	case snap := <-s.snapshots:
		s.rec.Apply(snap)
	default:
	}

	s.local.Step(dt, in)

	if sprite := s.local.Sprite(); sprite != nil {
		if asset := s.loader.Asset(s.avatarKey); asset != nil {
			s.zones.Step(Rect{
				X: sprite.X - float64(asset.FrameW)/2,
				Y: sprite.Y - float64(asset.FrameH)/2,
				W: float64(asset.FrameW),
				H: float64(asset.FrameH),
			})
		}
	}
}

// drainCompletions 非阻塞排空异步完成回调（当前帧的全部已到事件）
func (s *Scene) drainCompletions() {
	for {
		select {
		case fn := <-s.completions:
			fn()
		default:
			return
		}
	}
}

// Run 固定频率推进场景；sample 每 Tick 采样一次输入
func (s *Scene) Run(tps int, sample func() InputState) {
	interval := time.Second / time.Duration(tps)
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Tick(dt, sample())
		case <-s.stop:
			return
		}
	}
}

// Stop 结束 Run 循环
func (s *Scene) Stop() {
	close(s.stop)
}

// Close 场景拆除：此后 Tick 不再推进，队列里滞留的加载完成不会被执行
func (s *Scene) Close() {
	s.alive = false
}
