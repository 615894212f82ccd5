package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"octoarena/game"
	"octoarena/server"
)

// nopSurface 测试中不关心绘制
type nopSurface struct{}

func (nopSurface) Size() game.Dimensions { return game.Dimensions{Width: 900, Height: 900} }
func (nopSurface) Clear() {}
func (nopSurface) StrokePath([]game.Coordinate, bool, float64, string) {}
func (nopSurface) FillRect(game.Coordinate, game.Dimensions, string) {}
func (nopSurface) StrokeRect(game.Coordinate, game.Dimensions, float64, string) {}
func (nopSurface) Text(string, game.Coordinate, float64, game.Align, string) {}
func (nopSurface) DrawFigure(game.Figure, int, game.Coordinate, game.Dimensions, bool, string) {}
func (nopSurface) MeasureText(string, float64) float64 { return 0 }

type peer struct {
	conn    *Conn
	scene   *game.Scene
	session *Session
}

func newPeer(t *testing.T, ctx context.Context, url, name, color string) *peer {
	t.Helper()
	conn, err := Dial(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := game.NewScene(game.DefaultConfig(), nopSurface{}, conn, game.DefaultObstacles(game.DefaultConfig())...)
	if err != nil {
		t.Fatal(err)
	}
	p := &peer{conn: conn, scene: sc, session: NewSession(conn, sc, "room-1", name, color)}
	go func() { _ = conn.Run(ctx, p.session) }()
	return p
}

func startRelay(t *testing.T) string {
	t.Helper()
	reg, err := server.OpenRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	rm := server.NewRoomManager(reg, 1000, 1000)
	srv := httptest.NewServer(http.HandlerFunc(rm.HandleWS))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// eventually 推进场景直到条件满足
func eventually(t *testing.T, what string, cond func() bool, scenes ...*game.Scene) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, sc := range scenes {
			sc.Step()
		}
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func remoteNamed(sc *game.Scene, name string) *game.RemoteController {
	for _, sp := range sc.Sprites() {
		if rc, ok := sp.(*game.RemoteController); ok && rc.Descriptor().Name == name {
			return rc
		}
	}
	return nil
}

func TestSessionsReconcileThroughRelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	url := startRelay(t)

	alice := newPeer(t, ctx, url, "alice", "red")
	if err := alice.session.Join(); err != nil {
		t.Fatal(err)
	}
	eventually(t, "alice in lobby", func() bool { return alice.session.Phase() == PhaseLobby }, alice.scene)

	bob := newPeer(t, ctx, url, "bob", "blue")
	if err := bob.session.Join(); err != nil {
		t.Fatal(err)
	}
	eventually(t, "both see two players", func() bool {
		return len(alice.scene.Players()) == 2 && len(bob.scene.Players()) == 2
	}, alice.scene, bob.scene)

	if !alice.session.IsAdmin() || bob.session.IsAdmin() {
		t.Fatalf("admin: alice=%v bob=%v", alice.session.IsAdmin(), bob.session.IsAdmin())
	}
	if alice.scene.CurrentPlayer() == nil || remoteNamed(alice.scene, "bob") == nil {
		t.Fatal("alice scene not split into local/remote")
	}

	if err := bob.session.StartGame(); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("bob StartGame = %v, want ErrNotAdmin", err)
	}
	if err := alice.session.StartGame(); err != nil {
		t.Fatal(err)
	}
	eventually(t, "run_game", func() bool {
		return alice.session.Phase() == PhaseRunGame && bob.session.Phase() == PhaseRunGame &&
			bob.scene.Phase() == game.PhaseRunGame
	}, alice.scene, bob.scene)

	// alice 向右走几步，然后一次性发送
	alice.scene.OnInput(game.InputEvent{Kind: game.PointerMove, X: 800, Y: 425})
	alice.scene.OnInput(game.InputEvent{Kind: game.PointerDown})
	for i := 0; i < 4; i++ {
		alice.scene.Step()
	}
	want := alice.scene.CurrentPlayer().State()
	if n := alice.scene.CurrentPlayer().Flush(); n != 4 {
		t.Fatalf("flushed %d, want 4", n)
	}

	eventually(t, "bob replays alice", func() bool {
		rc := remoteNamed(bob.scene, "alice")
		return rc != nil && rc.State() == want && rc.Backlog() == 0
	}, bob.scene)
}

func TestSessionRejectedRegistration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	url := startRelay(t)

	p := newPeer(t, ctx, url, "alice", "green")
	if err := p.session.Join(); err != nil {
		t.Fatal(err)
	}
	eventually(t, "error", func() bool { return p.session.LastError() != "" }, p.scene)
	if p.session.Phase() != PhaseJoinGame {
		t.Fatalf("phase = %s, want join_game", p.session.Phase())
	}
}

func TestConnClosedRejectsSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn, err := Dial(ctx, startRelay(t))
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()
	conn.Close()
	if err := conn.SendStates("p1", nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
