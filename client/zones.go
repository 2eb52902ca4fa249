package client

// ControlEvent 模拟层发给 UI 层的控制信号，带标签的变体类型
type ControlEvent interface {
	controlEvent()
}

// EnteredZone 本地实体进入一个声明区域（边沿触发，进入瞬间一次）
type EnteredZone struct {
	Name string
}

// ExitedZone 本地实体离开一个声明区域（边沿触发，离开瞬间一次）
type ExitedZone struct {
	Name string
}

// ToggleAudio 请求切换背景音频静音
type ToggleAudio struct{}

func (EnteredZone) controlEvent() {}
func (ExitedZone) controlEvent()  {}
func (ToggleAudio) controlEvent() {}

// Rect 轴对齐矩形
type Rect struct {
	X, Y float64
	W, H float64
}

// Overlaps 两矩形是否相交
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X &&
		r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

type zoneState struct {
	name     string
	rect     Rect
	occupied bool
}

// ZoneWatcher 区域触发检测：每 Tick 做一次重叠测试，
// 只在占用标志翻转的那一帧发出 Entered/Exited 通知
type ZoneWatcher struct {
	zones  []*zoneState
	notify func(ControlEvent)
}

func NewZoneWatcher(notify func(ControlEvent)) *ZoneWatcher {
	return &ZoneWatcher{notify: notify}
}

// AddZone 声明一个矩形区域
func (w *ZoneWatcher) AddZone(name string, rect Rect) {
	w.zones = append(w.zones, &zoneState{name: name, rect: rect})
}

// Step 用本地实体的包围盒测试全部区域；标志不变时不产生任何通知
func (w *ZoneWatcher) Step(player Rect) {
	for _, z := range w.zones {
		inside := player.Overlaps(z.rect)
		switch {
		case inside && !z.occupied:
			z.occupied = true
			w.notify(EnteredZone{Name: z.name})
		case !inside && z.occupied:
			z.occupied = false
			w.notify(ExitedZone{Name: z.name})
		}
	}
}
