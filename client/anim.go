package client

import "fmt"

// 剪辑动作名
const (
	MotionIdle = "idle"
	MotionWalk = "walk"
)

// 所有剪辑统一 10 帧/秒、循环播放（与精灵表配套）
const clipFrameRate = 10

// ClipName 剪辑命名约定："{avatarKey}-{motion}-{direction}"
func ClipName(avatarKey, motion, direction string) string {
	return fmt.Sprintf("%s-%s-%s", avatarKey, motion, direction)
}

// Clip 一段已物化的动画剪辑
type Clip struct {
	Name       string
	TextureKey string
	Frames     []int
	FrameRate  int
	Loop       bool
}

// AnimRegistry 动画注册表：每个头像 key 物化 8 个剪辑
// （4 朝向 × idle/walk），只在 Tick 上下文中读写
type AnimRegistry struct {
	clips map[string]*Clip
}

func NewAnimRegistry() *AnimRegistry {
	return &AnimRegistry{clips: make(map[string]*Clip)}
}

// EnsureAnimations 幂等地为一个已加载的头像生成全部剪辑；
// 必须在对应资源加载完成后调用
func (a *AnimRegistry) EnsureAnimations(asset *AvatarAsset) {
	for dir, frame := range asset.IdleFrame {
		name := ClipName(asset.Key, MotionIdle, dir)
		if _, ok := a.clips[name]; ok {
			continue
		}
		a.clips[name] = &Clip{
			Name:       name,
			TextureKey: asset.Key,
			Frames:     []int{frame},
			FrameRate:  clipFrameRate,
			Loop:       true,
		}
	}
	for dir, rng := range asset.WalkFrames {
		name := ClipName(asset.Key, MotionWalk, dir)
		if _, ok := a.clips[name]; ok {
			continue
		}
		frames := make([]int, 0, rng.End-rng.Start+1)
		for f := rng.Start; f <= rng.End; f++ {
			frames = append(frames, f)
		}
		a.clips[name] = &Clip{
			Name:       name,
			TextureKey: asset.Key,
			Frames:     frames,
			FrameRate:  clipFrameRate,
			Loop:       true,
		}
	}
}

// Exists 剪辑是否已物化
func (a *AnimRegistry) Exists(name string) bool {
	_, ok := a.clips[name]
	return ok
}

// Clip 按名字取剪辑；不存在返回 nil
func (a *AnimRegistry) Clip(name string) *Clip {
	return a.clips[name]
}
