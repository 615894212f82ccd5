package render

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"octoarena/game"
)

// Lobby 大厅阶段需要的会话能力
type Lobby interface {
	IsAdmin() bool
	StartGame() error
}

// Game 把 ebiten 的 Update/Draw 接到场景上：输入 → Step，Draw → Render
type Game struct {
	ctx     context.Context
	scene   *game.Scene
	surface *Surface
	lobby   Lobby

	lastX, lastY int
}

var _ ebiten.Game = (*Game)(nil)

// NewGame surface 必须与创建场景时注入的是同一个
func NewGame(ctx context.Context, sc *game.Scene, surface *Surface, lobby Lobby) *Game {
	return &Game{ctx: ctx, scene: sc, surface: surface, lobby: lobby, lastX: -1, lastY: -1}
}

// Update 采集本帧输入并推进一次场景
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	if x, y := ebiten.CursorPosition(); x != g.lastX || y != g.lastY {
		g.lastX, g.lastY = x, y
		g.scene.OnInput(game.InputEvent{Kind: game.PointerMove, X: float64(x), Y: float64(y)})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.scene.OnInput(game.InputEvent{Kind: game.PointerDown})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.scene.OnInput(game.InputEvent{Kind: game.PointerUp})
	}
	for k, key := range map[ebiten.Key]game.Key{ebiten.KeySpace: game.KeySpace, ebiten.KeyF: game.KeyF} {
		if inpututil.IsKeyJustPressed(k) {
			g.scene.OnInput(game.InputEvent{Kind: game.KeyDown, Key: key})
		}
		if inpututil.IsKeyJustReleased(k) {
			g.scene.OnInput(game.InputEvent{Kind: game.KeyUp, Key: key})
		}
	}
	if g.lobby != nil && g.scene.Phase() == game.PhaseLobby && g.lobby.IsAdmin() && inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		_ = g.lobby.StartGame()
	}

	g.scene.Step()
	return nil
}

// Draw 渲染场景；大厅阶段叠加玩家列表
func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.Bind(screen)
	if g.scene.Phase() == game.PhaseLobby {
		g.drawLobby()
		return
	}
	g.scene.Render(g.surface)
}

func (g *Game) drawLobby() {
	g.surface.Clear()
	y := 60.0
	g.surface.Text("players", game.Coordinate{X: 40, Y: y}, 18, game.AlignLeft, "black")
	for _, p := range g.scene.Players() {
		y += 24
		g.surface.Text(p.Name, game.Coordinate{X: 60, Y: y}, 15, game.AlignLeft, p.Color)
	}
	if g.lobby != nil && g.lobby.IsAdmin() {
		g.surface.Text("press enter to start game", game.Coordinate{X: 40, Y: y + 48}, 15, game.AlignLeft, "blue")
	}
}

// Layout 画布尺寸固定
func (g *Game) Layout(int, int) (int, int) {
	c := g.scene.Config().CanvasSize
	return int(c.Width), int(c.Height)
}

// Run 打开窗口并运行到窗口关闭或 ctx 取消
func (g *Game) Run(title string) error {
	cfg := g.scene.Config()
	ebiten.SetWindowSize(int(cfg.CanvasSize.Width), int(cfg.CanvasSize.Height))
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(int(time.Second / cfg.TickInterval))
	return ebiten.RunGame(g)
}
