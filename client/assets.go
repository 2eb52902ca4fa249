// Package client 实现无头的客户端引擎核心：
// 快照对账、头像资源加载、动画状态机、本地输入循环与区域触发。
// 渲染/物理基底视为外部协作方，这里只持有轻量句柄。
package client

import (
	"go.uber.org/zap"
)

// 朝向字符串，与线上协议一致
const (
	DirUp    = "up"
	DirDown  = "down"
	DirLeft  = "left"
	DirRight = "right"

	DefaultDirection = DirDown
)

// SpriteSheet 一张已取回的精灵表（几何信息由资源方给出）
type SpriteSheet struct {
	Key    string
	FrameW int
	FrameH int
}

// AssetSource 头像资源的获取方；可能是 HTTP 资源服务器，测试中为内存实现
type AssetSource interface {
	FetchSheet(key string) (SpriteSheet, error)
}

// FrameRange 行走剪辑的帧区间（闭区间）
type FrameRange struct {
	Start int
	End   int
}

// AvatarAsset 一个头像的静态几何：帧尺寸 + 各朝向的帧布局，按 key 不可变
type AvatarAsset struct {
	Key    string
	FrameW int
	FrameH int

	IdleFrame  map[string]int
	WalkFrames map[string]FrameRange
}

// newAvatarAsset 按固定精灵表布局生成帧索引（所有头像共用同一布局）
func newAvatarAsset(sheet SpriteSheet) *AvatarAsset {
	return &AvatarAsset{
		Key:    sheet.Key,
		FrameW: sheet.FrameW,
		FrameH: sheet.FrameH,
		IdleFrame: map[string]int{
			DirRight: 2,
			DirDown:  20,
			DirLeft:  14,
			DirUp:    8,
		},
		WalkFrames: map[string]FrameRange{
			DirRight: {Start: 0, End: 5},
			DirUp:    {Start: 6, End: 11},
			DirLeft:  {Start: 12, End: 17},
			DirDown:  {Start: 18, End: 23},
		},
	}
}

// AssetLoader 头像资源加载器：每个 key 至多发起一次取回，
// 并发请求合流到同一次在途加载，完成后按序通知全部等待者。
// 除 FetchSheet 在独立协程执行外，全部状态只在 Tick 上下文中读写。
type AssetLoader struct {
	source AssetSource
	post   func(fn func()) // 完成回调投递回 Tick 队列
	log    *zap.SugaredLogger

	assets  map[string]*AvatarAsset
	waiters map[string][]func() // 在途 key → 等待者
	failed  map[string]bool     // 失败的 key 本进程内永久不可用
}

func NewAssetLoader(source AssetSource, post func(fn func()), log *zap.SugaredLogger) *AssetLoader {
	return &AssetLoader{
		source:  source,
		post:    post,
		log:     log,
		assets:  make(map[string]*AvatarAsset),
		waiters: make(map[string][]func()),
		failed:  make(map[string]bool),
	}
}

// EnsureLoaded 确保 key 对应的精灵表已加载：
// 已加载则同步回调；在途则挂到同一次加载上；失败过则静默丢弃；
// 否则发起唯一一次取回，结果经 post 回到 Tick 上下文再派发。
func (l *AssetLoader) EnsureLoaded(key string, then func()) {
	if _, ok := l.assets[key]; ok {
		then()
		return
	}
	if l.failed[key] {
		return
	}
	if _, inflight := l.waiters[key]; inflight {
		l.waiters[key] = append(l.waiters[key], then)
		return
	}

	l.waiters[key] = []func(){then}
	go func() {
		sheet, err := l.source.FetchSheet(key)
		l.post(func() { l.complete(key, sheet, err) })
	}()
}

// complete 在 Tick 上下文中收尾一次加载：注册资源并通知全部等待者
func (l *AssetLoader) complete(key string, sheet SpriteSheet, err error) {
	waiters := l.waiters[key]
	delete(l.waiters, key)

	if err != nil {
		// 失败不重试：该 key 的实体将一直停留在待加载态，不影响其他实体
		l.failed[key] = true
		l.log.Warnf("avatar sheet load failed: key=%s err=%v", key, err)
		return
	}

	l.assets[key] = newAvatarAsset(sheet)
	for _, then := range waiters {
		then()
	}
}

// Loaded key 是否已加载完成
func (l *AssetLoader) Loaded(key string) bool {
	_, ok := l.assets[key]
	return ok
}

// Asset 返回已加载的头像几何；未加载返回 nil
func (l *AssetLoader) Asset(key string) *AvatarAsset {
	return l.assets[key]
}
