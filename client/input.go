package client

// InputState 一个 Tick 采样到的方向键与焦点状态
type InputState struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool

	// 键盘焦点被文字输入面（聊天框等）夺走时为 true
	FocusCaptured bool
}

// MoveEvent 上行的移动事件载荷
type MoveEvent struct {
	X         float64
	Y         float64
	Direction string
	Avatar    string
}

// LocalPlayer 本地实体的输入/发送循环：
// 每 Tick 采样输入、积分位置、选剪辑，只在真正移动时上行 move
type LocalPlayer struct {
	avatarKey     string
	anims         *AnimRegistry
	sprite        *Sprite
	lastDirection string
	speed         float64
	worldW        float64
	worldH        float64
	emit          func(MoveEvent)
}

func NewLocalPlayer(avatarKey string, anims *AnimRegistry, speed, worldW, worldH float64, emit func(MoveEvent)) *LocalPlayer {
	return &LocalPlayer{
		avatarKey:     avatarKey,
		anims:         anims,
		lastDirection: DefaultDirection,
		speed:         speed,
		worldW:        worldW,
		worldH:        worldH,
		emit:          emit,
	}
}

// attach 本地头像资源就绪后挂上精灵句柄；在此之前 Step 为空转
func (p *LocalPlayer) attach(sprite *Sprite) {
	p.sprite = sprite
}

// Sprite 本地精灵句柄；资源未就绪时为 nil
func (p *LocalPlayer) Sprite() *Sprite {
	return p.sprite
}

// Direction 当前朝向
func (p *LocalPlayer) Direction() string {
	return p.lastDirection
}

// Step 推进一个 Tick。焦点被夺走时：冻结（零速度）并强制 idle，
// 忽略残留按键，不上行任何事件。
func (p *LocalPlayer) Step(dt float64, in InputState) {
	if p.sprite == nil {
		return
	}

	if in.FocusCaptured {
		p.playIfDifferent(ClipName(p.avatarKey, MotionIdle, p.lastDirection))
		return
	}

	var vx, vy float64
	if in.Left {
		vx = -p.speed
		p.lastDirection = DirLeft
	} else if in.Right {
		vx = p.speed
		p.lastDirection = DirRight
	}
	if in.Up {
		vy = -p.speed
		p.lastDirection = DirUp
	} else if in.Down {
		vy = p.speed
		p.lastDirection = DirDown
	}

	x := p.sprite.X + vx*dt
	y := p.sprite.Y + vy*dt
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > p.worldW {
		x = p.worldW
	}
	if y > p.worldH {
		y = p.worldH
	}
	p.sprite.SetPosition(x, y)

	moving := vx != 0 || vy != 0
	motion := MotionIdle
	if moving {
		motion = MotionWalk
	}
	p.playIfDifferent(ClipName(p.avatarKey, motion, p.lastDirection))

	// 只在真正移动时上行，静止帧不发，减少无谓广播
	if moving && p.emit != nil {
		p.emit(MoveEvent{X: x, Y: y, Direction: p.lastDirection, Avatar: p.avatarKey})
	}
}

func (p *LocalPlayer) playIfDifferent(clip string) {
	if p.anims.Exists(clip) {
		p.sprite.Play(clip)
	}
}
