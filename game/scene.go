package game

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"octoarena/logging"
)

// 绘制层级：数值越大越靠上；静态墙没有层级，最先绘制
const (
	zStation      = 0
	zRemotePlayer = 1
	zLocalPlayer  = 2
	zDialog       = 100
)

// WorldObject 可绘制对象；ZIndex 第二个返回值为 false 表示未设置层级
type WorldObject interface {
	Render(s Surface)
	ZIndex() (int, bool)
}

// StaticObject 静态障碍，构造后不再变化
type StaticObject interface {
	WorldObject
	BlocksPoint(p Coordinate) bool
}

// Sprite 每 Tick 更新的对象
type Sprite interface {
	WorldObject
	UpdateState(sc *Scene)
}

// Keyboard 关心的按键状态
type Keyboard struct {
	Space bool
	F     bool
}

// Mouse 指针位置（画布坐标）与按下状态
type Mouse struct {
	X       float64
	Y       float64
	Pressed bool
}

// AmbientState 场景共享的输入状态：只由输入事件写入，控制器只读
type AmbientState struct {
	Ticks    uint
	Keyboard Keyboard
	Mouse    Mouse
}

// Phase 房间阶段
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseRunGame Phase = "run_game"
)

type eventKind int

const (
	eventEntities eventKind = iota
	eventUpdate
	eventLaunch
)

// sceneEvent 跨协程到达、需在 Tick 线程按序应用的事件
type sceneEvent struct {
	kind     eventKind
	entries  []PlayerEntry
	playerID string
	states   []EntityState
}

// Scene 持有全部实体、静态障碍与输入状态，驱动固定周期的更新与渲染
type Scene struct {
	cfg       Config
	surface   Surface
	transport Transport
	localName string

	staticObjects []StaticObject
	sprites       []Sprite
	ambient       AmbientState

	inputChan chan InputEvent
	eventChan chan sceneEvent // 注册、快照与开始游戏共用一个通道，保持传输层到达顺序

	remotes map[string]*RemoteController // 按 ID 路由快照，只在 Tick 线程访问

	mu    sync.RWMutex
	phase Phase

	ctx           context.Context
	tickerStarted bool

	// OnPlayersChanged 新玩家加入后回调（在 Tick 线程中执行）
	OnPlayersChanged func(players []Descriptor)
}

// NewScene 创建场景；缺少渲染表面属于不可恢复的构造错误
func NewScene(cfg Config, surface Surface, transport Transport, staticObjects ...StaticObject) (*Scene, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	cfg = cfg.withDefaults()
	return &Scene{
		cfg:           cfg,
		surface:       surface,
		transport:     transport,
		staticObjects: staticObjects,
		inputChan:     make(chan InputEvent, 256), // 足够缓冲，避免输入回调阻塞
		eventChan:     make(chan sceneEvent, 256),
		remotes:       make(map[string]*RemoteController),
		phase:         PhaseLobby,
	}, nil
}

// DefaultObstacles 默认地图：画布居中的八边形围墙
func DefaultObstacles(cfg Config) []StaticObject {
	cfg = cfg.withDefaults()
	return []StaticObject{NewOctagonalWall(cfg.OctagonSize, cfg.CanvasSize, cfg.WallStrokeWidth)}
}

// Config 返回生效的配置
func (s *Scene) Config() Config { return s.cfg }

// SetLocalName 设置本客户端注册的玩家名，用于区分本地/远端控制器
func (s *Scene) SetLocalName(name string) { s.localName = name }

// Ambient 返回输入状态副本
func (s *Scene) Ambient() AmbientState { return s.ambient }

// StaticObjects 返回静态障碍
func (s *Scene) StaticObjects() []StaticObject { return s.staticObjects }

// Sprites 返回按插入顺序排列的对象副本
func (s *Scene) Sprites() []Sprite {
	out := make([]Sprite, len(s.sprites))
	copy(out, s.sprites)
	return out
}

// Phase 当前阶段
func (s *Scene) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// StartGame 收到开始游戏通知，切换阶段；首次切换时在下一次 Tick 加入发射动画
func (s *Scene) StartGame() {
	s.mu.Lock()
	prev := s.phase
	s.phase = PhaseRunGame
	s.mu.Unlock()
	if prev != PhaseRunGame {
		logging.Log.Infow("game started", "local", s.localName)
		s.eventChan <- sceneEvent{kind: eventLaunch}
	}
}

// AddEntities 为尚未出现的玩家创建控制器及其加油站（须在 Tick 线程调用）
func (s *Scene) AddEntities(entries []PlayerEntry) error {
	var added []Descriptor
	for _, e := range entries {
		if s.hasPlayer(e.Descriptor.ID) {
			continue
		}
		sp, err := s.newController(e.Descriptor)
		if err != nil {
			return fmt.Errorf("add player %s: %w", e.Descriptor.Name, err)
		}
		s.sprites = append(s.sprites, sp)
		if e.FuelingStation != nil {
			s.sprites = append(s.sprites, NewFuelingStation(*e.FuelingStation))
		}
		added = append(added, e.Descriptor)
		logging.Log.Infow("player added", "id", e.Descriptor.ID, "name", e.Descriptor.Name, "local", e.Descriptor.Name == s.localName)
	}
	if len(added) > 0 && s.OnPlayersChanged != nil {
		s.OnPlayersChanged(s.Players())
	}
	return nil
}

func (s *Scene) newController(d Descriptor) (Sprite, error) {
	if s.localName != "" && d.Name == s.localName {
		lc, err := NewLocalController(d, s.cfg, s.transport)
		if err != nil {
			return nil, err
		}
		if s.ctx != nil {
			lc.Start(s.ctx)
		}
		return lc, nil
	}
	rc := NewRemoteController(d, s.cfg)
	s.remotes[d.ID] = rc
	return rc, nil
}

func (s *Scene) hasPlayer(id string) bool {
	for _, sp := range s.sprites {
		if pl, ok := sp.(interface{ Descriptor() Descriptor }); ok && pl.Descriptor().ID == id {
			return true
		}
	}
	return false
}

// Players 当前全部玩家描述（按插入顺序）
func (s *Scene) Players() []Descriptor {
	var out []Descriptor
	for _, sp := range s.sprites {
		if pl, ok := sp.(interface{ ToDescriptor() Descriptor }); ok {
			out = append(out, pl.ToDescriptor())
		}
	}
	return out
}

// CurrentPlayer 本客户端控制的玩家；未注册时返回 nil
func (s *Scene) CurrentPlayer() *LocalController {
	for _, sp := range s.sprites {
		if lc, ok := sp.(*LocalController); ok {
			return lc
		}
	}
	return nil
}

// AddSprite 追加对象（如弹窗）
func (s *Scene) AddSprite(sp Sprite) {
	s.sprites = append(s.sprites, sp)
}

// RemoveSprite 按引用移除对象
func (s *Scene) RemoveSprite(sp Sprite) {
	for i, cur := range s.sprites {
		if cur != sp {
			continue
		}
		s.sprites = append(s.sprites[:i], s.sprites[i+1:]...)
		switch v := sp.(type) {
		case *RemoteController:
			delete(s.remotes, v.desc.ID)
		case *LocalController:
			v.Stop()
		}
		return
	}
}

// DeliverUpdate 远端快照（可在任意协程调用），在下一次 Tick 开始时路由
// 与 RequestEntities 走同一通道，紧随注册到达的快照不会因控制器尚未创建而丢失
func (s *Scene) DeliverUpdate(playerID string, states []EntityState) {
	s.eventChan <- sceneEvent{kind: eventUpdate, playerID: playerID, states: states}
}

// RequestEntities 来自传输回调的注册事件，在下一次 Tick 开始时处理
func (s *Scene) RequestEntities(entries []PlayerEntry) {
	s.eventChan <- sceneEvent{kind: eventEntities, entries: entries}
}

// routeUpdate 将快照追加到对应远端控制器；本地玩家与未知 ID 忽略
func (s *Scene) routeUpdate(playerID string, states []EntityState) bool {
	rc, ok := s.remotes[playerID]
	if !ok {
		logging.Log.Debugw("update for unknown remote", "id", playerID, "states", len(states))
		return false
	}
	rc.Enqueue(states)
	return true
}

// processPending 处理帧间到达的输入与场景事件（非阻塞 drain）
func (s *Scene) processPending() {
	for {
		select {
		case ev := <-s.inputChan:
			s.applyInput(ev)
		case ev := <-s.eventChan:
			s.applyEvent(ev)
		default:
			return
		}
	}
}

func (s *Scene) applyEvent(ev sceneEvent) {
	switch ev.kind {
	case eventEntities:
		if err := s.AddEntities(ev.entries); err != nil {
			logging.Log.Errorw("add entities failed", "err", err)
		}
	case eventUpdate:
		s.routeUpdate(ev.playerID, ev.states)
	case eventLaunch:
		s.AddSprite(NewLaunchSequence(s.cfg))
	}
}

// Step 一次更新：Tick 计数加一，按插入顺序更新所有对象
func (s *Scene) Step() {
	s.processPending()
	s.ambient.Ticks++
	for _, sp := range s.Sprites() {
		sp.UpdateState(s)
	}
}

// Render 合并静态障碍与对象，按层级稳定排序后绘制
func (s *Scene) Render(surface Surface) {
	surface.Clear()

	all := make([]WorldObject, 0, len(s.staticObjects)+len(s.sprites))
	for _, o := range s.staticObjects {
		all = append(all, o)
	}
	for _, sp := range s.sprites {
		all = append(all, sp)
	}
	sort.SliceStable(all, func(i, j int) bool {
		zi, oki := all[i].ZIndex()
		zj, okj := all[j].ZIndex()
		if !oki || !okj {
			return !oki && okj
		}
		return zi < zj
	})
	for _, o := range all {
		o.Render(surface)
	}
}

// Tick 更新并渲染到场景自身的表面
func (s *Scene) Tick() {
	s.Step()
	s.Render(s.surface)
}

// Start 绑定生命周期并启动已有本地玩家的定时发送
func (s *Scene) Start(ctx context.Context) {
	s.ctx = ctx
	for _, sp := range s.sprites {
		if lc, ok := sp.(*LocalController); ok {
			lc.Start(ctx)
		}
	}
}

// Close 停止所有定时任务
func (s *Scene) Close() {
	for _, sp := range s.sprites {
		if lc, ok := sp.(*LocalController); ok {
			lc.Stop()
		}
	}
}
