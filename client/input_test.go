package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPlayer 直接挂好精灵与动画，绕过异步加载
func newTestPlayer(emit func(MoveEvent)) (*LocalPlayer, *Sprite) {
	anims := NewAnimRegistry()
	anims.EnsureAnimations(testAsset("fox"))
	p := NewLocalPlayer("fox", anims, 250, 1920, 1200, emit)
	sprite := NewStage().NewSprite("fox", 100, 100)
	p.attach(sprite)
	return p, sprite
}

func TestStepBeforeAttachIsNoop(t *testing.T) {
	anims := NewAnimRegistry()
	p := NewLocalPlayer("fox", anims, 250, 1920, 1200, func(MoveEvent) {
		t.Fatal("must not emit without a sprite")
	})

	p.Step(0.05, InputState{Right: true})
}

func TestMovingIntegratesAndEmits(t *testing.T) {
	var events []MoveEvent
	p, sprite := newTestPlayer(func(ev MoveEvent) { events = append(events, ev) })

	p.Step(0.1, InputState{Right: true})

	assert.Equal(t, 125.0, sprite.X) // 100 + 250*0.1
	assert.Equal(t, 100.0, sprite.Y)
	assert.Equal(t, "fox-walk-right", sprite.CurrentClip)
	require.Len(t, events, 1)
	assert.Equal(t, MoveEvent{X: 125, Y: 100, Direction: DirRight, Avatar: "fox"}, events[0])
}

func TestIdleTickDoesNotEmit(t *testing.T) {
	var events []MoveEvent
	p, sprite := newTestPlayer(func(ev MoveEvent) { events = append(events, ev) })

	p.Step(0.1, InputState{Right: true})
	p.Step(0.1, InputState{}) // 松开按键

	assert.Equal(t, "fox-idle-right", sprite.CurrentClip, "idle keeps last facing")
	assert.Len(t, events, 1, "idle ticks must not emit")
}

func TestVerticalAxisSetsFacing(t *testing.T) {
	var events []MoveEvent
	p, sprite := newTestPlayer(func(ev MoveEvent) { events = append(events, ev) })

	// 同时按左与上：垂直轴后判定，朝向取 up
	p.Step(0.1, InputState{Left: true, Up: true})

	assert.Equal(t, 75.0, sprite.X)
	assert.Equal(t, 75.0, sprite.Y)
	assert.Equal(t, DirUp, p.Direction())
	assert.Equal(t, "fox-walk-up", sprite.CurrentClip)
	require.Len(t, events, 1)
	assert.Equal(t, DirUp, events[0].Direction)
}

func TestFocusCapturedFreezesAndForcesIdle(t *testing.T) {
	var events []MoveEvent
	p, sprite := newTestPlayer(func(ev MoveEvent) { events = append(events, ev) })
	p.Step(0.1, InputState{Right: true})
	require.Len(t, events, 1)

	// 焦点被聊天框夺走：残留的按键状态必须被忽略
	p.Step(0.1, InputState{Right: true, FocusCaptured: true})

	assert.Equal(t, 125.0, sprite.X, "frozen while focus captured")
	assert.Equal(t, "fox-idle-right", sprite.CurrentClip)
	assert.Len(t, events, 1, "no emit while focus captured")
}

func TestPositionClampedToWorldBounds(t *testing.T) {
	p, sprite := newTestPlayer(nil)
	sprite.SetPosition(5, 5)

	p.Step(1.0, InputState{Left: true, Up: true}) // 250px 的步长越过边界

	assert.Equal(t, 0.0, sprite.X)
	assert.Equal(t, 0.0, sprite.Y)

	sprite.SetPosition(1918, 1198)
	p.Step(1.0, InputState{Right: true, Down: true})
	assert.Equal(t, 1920.0, sprite.X)
	assert.Equal(t, 1200.0, sprite.Y)
}

func TestClipOnlySwitchesWhenDifferent(t *testing.T) {
	p, sprite := newTestPlayer(nil)

	p.Step(0.1, InputState{Right: true})
	clip := sprite.CurrentClip
	p.Step(0.1, InputState{Right: true})

	assert.Equal(t, clip, sprite.CurrentClip)
	assert.Equal(t, "fox-walk-right", sprite.CurrentClip)
}
