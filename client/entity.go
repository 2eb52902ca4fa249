package client

// 名字标签悬浮在精灵上方的像素偏移
const labelOffsetY = 60

// Sprite 渲染基底中一个精灵的轻量句柄
type Sprite struct {
	TextureKey  string
	X, Y        float64
	CurrentClip string

	live bool
}

// Play 切换播放剪辑；与当前剪辑相同时不重播
func (s *Sprite) Play(clip string) {
	if s.CurrentClip == clip {
		return
	}
	s.CurrentClip = clip
}

// SetPosition 更新精灵位置
func (s *Sprite) SetPosition(x, y float64) {
	s.X, s.Y = x, y
}

// Label 悬浮文字（如用户名）的轻量句柄
type Label struct {
	Text string
	X, Y float64

	live bool
}

// SetPosition 更新标签位置
func (l *Label) SetPosition(x, y float64) {
	l.X, l.Y = x, y
}

// Stage 渲染句柄的创建与存活登记；代表外部渲染基底的最小切面
type Stage struct {
	sprites []*Sprite
	labels  []*Label
}

func NewStage() *Stage {
	return &Stage{}
}

// NewSprite 创建精灵句柄
func (st *Stage) NewSprite(textureKey string, x, y float64) *Sprite {
	s := &Sprite{TextureKey: textureKey, X: x, Y: y, live: true}
	st.sprites = append(st.sprites, s)
	return s
}

// NewLabel 创建标签句柄
func (st *Stage) NewLabel(text string, x, y float64) *Label {
	l := &Label{Text: text, X: x, Y: y, live: true}
	st.labels = append(st.labels, l)
	return l
}

// LiveSprites 存活精灵数
func (st *Stage) LiveSprites() int {
	n := 0
	for _, s := range st.sprites {
		if s.live {
			n++
		}
	}
	return n
}

// LiveLabels 存活标签数
func (st *Stage) LiveLabels() int {
	n := 0
	for _, l := range st.labels {
		if l.live {
			n++
		}
	}
	return n
}

// RemoteEntity 一个远端参与者的本地呈现：精灵 + 名字标签 + 上次已知位置
// 仅由对账器创建/更新/销毁，每个连接 id 至多一个
type RemoteEntity struct {
	ConnID string
	Sprite *Sprite
	Label  *Label

	LastX, LastY float64
}

// Destroy 释放渲染句柄（标签一并销毁）
func (e *RemoteEntity) Destroy() {
	if e.Sprite != nil {
		e.Sprite.live = false
	}
	if e.Label != nil {
		e.Label.live = false
	}
}
