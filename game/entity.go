package game

import "math"

// Colors 可选玩家颜色
var Colors = []string{"teal", "red", "blue", "purple", "brown", "black", "pink"}

// ValidColor 颜色是否在可选列表中
func ValidColor(c string) bool {
	for _, v := range Colors {
		if v == c {
			return true
		}
	}
	return false
}

// EntityState 实体的可变状态，只能由拥有它的控制器修改
type EntityState struct {
	Position     Coordinate `json:"position"`
	FacingLeft   bool       `json:"facingLeft"`
	WalkingTicks uint       `json:"walkingTicks"`
}

// AnimationFrame 行走动画帧：每 5 Tick 切换一帧，共 4 帧
func (s EntityState) AnimationFrame() int {
	return int(s.WalkingTicks/5) % 4
}

// Descriptor 实体身份，注册时分配，之后不变
type Descriptor struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	IsAdmin      bool        `json:"isAdmin"`
	Color        string      `json:"color"`
	RoomName     string      `json:"roomName"`
	Size         Dimensions  `json:"size"`
	InitialState EntityState `json:"initialState"`
}

// StationDescriptor 加油站布局（由注册方持久化）
type StationDescriptor struct {
	PlayerID string     `json:"playerId"`
	Position Coordinate `json:"position"`
}

// PlayerEntry 注册响应中的一项：玩家与其加油站
type PlayerEntry struct {
	Descriptor     Descriptor         `json:"descriptor"`
	FuelingStation *StationDescriptor `json:"fuelingStation,omitempty"`
}

// player 本地与远端玩家共享的部分：身份、当前状态与绘制
type player struct {
	desc  Descriptor
	state EntityState
	z     int
}

func newPlayer(d Descriptor, defaultSize Dimensions, z int) player {
	if d.Size == (Dimensions{}) {
		d.Size = defaultSize
	}
	return player{desc: d, state: d.InitialState, z: z}
}

// Descriptor 返回身份信息
func (p *player) Descriptor() Descriptor { return p.desc }

// State 返回当前状态副本
func (p *player) State() EntityState { return p.state }

// Size 返回包围盒尺寸
func (p *player) Size() Dimensions { return p.desc.Size }

// ZIndex 玩家总是有层级
func (p *player) ZIndex() (int, bool) { return p.z, true }

// ToDescriptor 以当前状态作为初始状态导出描述
func (p *player) ToDescriptor() Descriptor {
	d := p.desc
	d.InitialState = p.state
	return d
}

func (p *player) center() Coordinate {
	return Coordinate{
		X: p.state.Position.X + p.desc.Size.Width/2,
		Y: p.state.Position.Y + p.desc.Size.Height/2,
	}
}

// Render 绘制角色与名字
func (p *player) Render(s Surface) {
	s.DrawFigure(FigurePlayer, p.state.AnimationFrame(), p.state.Position, p.desc.Size, p.state.FacingLeft, p.desc.Color)
	c := p.center()
	s.Text(p.desc.Name, Coordinate{X: c.X, Y: c.Y + p.desc.Size.Height/2 + 12}, 10, AlignCenter, "black")
}

// finite 过滤 NaN/Inf，避免异常快照污染状态
func finite(c Coordinate) bool {
	return !math.IsNaN(c.X) && !math.IsNaN(c.Y) && !math.IsInf(c.X, 0) && !math.IsInf(c.Y, 0)
}
