package game

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func newTestScene(t *testing.T, local string, obstacles ...StaticObject) (*Scene, *recordSurface, *recordTransport) {
	t.Helper()
	surf := &recordSurface{}
	tr := &recordTransport{}
	sc, err := NewScene(DefaultConfig(), surf, tr, obstacles...)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	sc.SetLocalName(local)
	return sc, surf, tr
}

func entry(id, name string, x, y float64, station *Coordinate) PlayerEntry {
	e := PlayerEntry{Descriptor: testDescriptor(id, name, x, y)}
	if station != nil {
		e.FuelingStation = &StationDescriptor{PlayerID: id, Position: *station}
	}
	return e
}

func TestNewSceneRequiresSurface(t *testing.T) {
	if _, err := NewScene(DefaultConfig(), nil, &recordTransport{}); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("err = %v, want ErrNoSurface", err)
	}
}

func TestAddEntitiesSplitsLocalAndRemote(t *testing.T) {
	sc, _, _ := newTestScene(t, "alice")
	var notified []Descriptor
	sc.OnPlayersChanged = func(p []Descriptor) { notified = p }

	err := sc.AddEntities([]PlayerEntry{
		entry("p1", "alice", 400, 400, nil),
		entry("p2", "bob", 300, 300, &Coordinate{200, 200}),
	})
	if err != nil {
		t.Fatal(err)
	}

	sprites := sc.Sprites()
	if len(sprites) != 3 {
		t.Fatalf("sprites = %d, want 3", len(sprites))
	}
	if _, ok := sprites[0].(*LocalController); !ok {
		t.Fatalf("sprite 0 = %T, want *LocalController", sprites[0])
	}
	if _, ok := sprites[1].(*RemoteController); !ok {
		t.Fatalf("sprite 1 = %T, want *RemoteController", sprites[1])
	}
	if _, ok := sprites[2].(*FuelingStation); !ok {
		t.Fatalf("sprite 2 = %T, want *FuelingStation", sprites[2])
	}
	if sc.CurrentPlayer() == nil || sc.CurrentPlayer().Descriptor().ID != "p1" {
		t.Fatal("current player not p1")
	}
	if len(notified) != 2 {
		t.Fatalf("notified %d players, want 2", len(notified))
	}

	// 重复注册不会重复创建
	if err := sc.AddEntities([]PlayerEntry{entry("p2", "bob", 0, 0, nil)}); err != nil {
		t.Fatal(err)
	}
	if len(sc.Sprites()) != 3 {
		t.Fatalf("duplicate added: %d sprites", len(sc.Sprites()))
	}
}

func TestAddEntitiesWithoutLocalNameIsAllRemote(t *testing.T) {
	sc, _, _ := newTestScene(t, "")
	_ = sc.AddEntities([]PlayerEntry{entry("p1", "alice", 0, 0, nil)})
	if sc.CurrentPlayer() != nil {
		t.Fatal("unexpected local player")
	}
}

func TestAddEntitiesLocalWithoutTransportFails(t *testing.T) {
	sc, err := NewScene(DefaultConfig(), &recordSurface{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	sc.SetLocalName("alice")
	if err := sc.AddEntities([]PlayerEntry{entry("p1", "alice", 0, 0, nil)}); !errors.Is(err, ErrNoTransport) {
		t.Fatalf("err = %v, want ErrNoTransport", err)
	}
}

func TestDeliverUpdateRoutesToRemote(t *testing.T) {
	sc, _, _ := newTestScene(t, "alice")
	_ = sc.AddEntities([]PlayerEntry{entry("p1", "alice", 400, 400, nil), entry("p2", "bob", 0, 0, nil)})
	alice := sc.CurrentPlayer().State()

	sc.DeliverUpdate("p1", snapshots(1))
	sc.DeliverUpdate("nobody", snapshots(1))
	in := snapshots(3)
	sc.DeliverUpdate("p2", in)
	if bob := sc.Sprites()[1].(*RemoteController); bob.Backlog() != 0 {
		t.Fatal("update routed outside tick")
	}
	for i := 0; i < 3; i++ {
		sc.Step()
	}
	bob := sc.Sprites()[1].(*RemoteController)
	if bob.State() != in[2] || bob.Backlog() != 0 {
		t.Fatalf("bob state=%+v backlog=%d", bob.State(), bob.Backlog())
	}
	if got := sc.CurrentPlayer().State(); got != alice {
		t.Fatalf("local player took remote updates: %+v", got)
	}
	if sc.routeUpdate("p1", snapshots(1)) || sc.routeUpdate("nobody", snapshots(1)) {
		t.Fatal("local or unknown id routed")
	}
}

func TestUpdateRightAfterRegistrationIsKept(t *testing.T) {
	sc, _, _ := newTestScene(t, "alice")
	// 注册与紧随其后的快照在同一帧间隔内到达
	sc.RequestEntities([]PlayerEntry{entry("p2", "bob", 0, 0, nil)})
	in := snapshots(3)
	sc.DeliverUpdate("p2", in)

	for i := 0; i < len(in); i++ {
		sc.Step()
	}
	bob, ok := sc.Sprites()[0].(*RemoteController)
	if !ok {
		t.Fatalf("sprite 0 = %T, want *RemoteController", sc.Sprites()[0])
	}
	if bob.State() != in[2] || bob.Backlog() != 0 {
		t.Fatalf("bob state=%+v backlog=%d, want last snapshot", bob.State(), bob.Backlog())
	}
}

func TestStepAppliesInputBeforeUpdate(t *testing.T) {
	sc, _, tr := newTestScene(t, "alice")
	_ = sc.AddEntities([]PlayerEntry{entry("p1", "alice", 380, 375, nil)})

	sc.OnInput(InputEvent{Kind: PointerMove, X: 450, Y: 400})
	sc.OnInput(InputEvent{Kind: PointerDown})
	sc.OnInput(InputEvent{Kind: KeyDown, Key: KeySpace})
	sc.Step()

	amb := sc.Ambient()
	if amb.Ticks != 1 || !amb.Mouse.Pressed || !amb.Keyboard.Space || amb.Keyboard.F {
		t.Fatalf("ambient = %+v", amb)
	}
	if p := sc.CurrentPlayer().State().Position; !approx(p.X, 385) {
		t.Fatalf("position = %v, want x=385", p)
	}

	sc.OnInput(InputEvent{Kind: PointerUp})
	sc.OnInput(InputEvent{Kind: KeyUp, Key: KeySpace})
	sc.Step()
	amb = sc.Ambient()
	if amb.Ticks != 2 || amb.Mouse.Pressed || amb.Keyboard.Space {
		t.Fatalf("ambient = %+v", amb)
	}

	if n := sc.CurrentPlayer().Flush(); n != 2 || tr.count() != 1 {
		t.Fatalf("flushed %d, batches %d", n, tr.count())
	}
}

func TestRequestEntitiesAppliedOnNextStep(t *testing.T) {
	sc, _, _ := newTestScene(t, "alice")
	sc.RequestEntities([]PlayerEntry{entry("p2", "bob", 0, 0, nil)})
	if len(sc.Sprites()) != 0 {
		t.Fatal("entities applied outside tick")
	}
	sc.Step()
	if len(sc.Sprites()) != 1 {
		t.Fatalf("sprites = %d, want 1", len(sc.Sprites()))
	}
}

func TestRenderOrdersByZIndex(t *testing.T) {
	wall := NewOctagonalWall(800, Dimensions{900, 900}, 6)
	sc, surf, _ := newTestScene(t, "alice", wall)
	// 插入顺序与层级相反
	_ = sc.AddEntities([]PlayerEntry{
		entry("p1", "alice", 400, 400, &Coordinate{600, 600}),
		entry("p2", "bob", 300, 300, nil),
	})
	dialog := NewFuelDialog(0, nil, nil)
	sc.AddSprite(dialog)
	sc.RemoveSprite(dialog)
	sc.AddSprite(NewFuelDialog(0, nil, nil))

	sc.Render(surf)

	want := []string{
		"path:8:blue",
		"figure:fuel_pump:",
		"figure:player:red", // bob z=1
		"figure:player:red", // alice z=2
		"path:2:black",
	}
	if got := surf.figures(); !reflect.DeepEqual(got, want) {
		t.Fatalf("render order = %v, want %v", got, want)
	}
	// 弹窗最后绘制
	if last := surf.ops[len(surf.ops)-1]; last != "fill:green" {
		t.Fatalf("last op = %s, want dialog content", last)
	}
}

func TestRenderOrderIsStableForEqualZ(t *testing.T) {
	sc, surf, _ := newTestScene(t, "")
	a := testDescriptor("p1", "alice", 0, 0)
	a.Color = "teal"
	b := testDescriptor("p2", "bob", 0, 0)
	b.Color = "pink"
	_ = sc.AddEntities([]PlayerEntry{{Descriptor: a}, {Descriptor: b}})

	sc.Render(surf)
	want := []string{"figure:player:teal", "figure:player:pink"}
	if got := surf.figures(); !reflect.DeepEqual(got, want) {
		t.Fatalf("render order = %v, want %v", got, want)
	}
}

func TestRemoveSpriteByReference(t *testing.T) {
	sc, _, _ := newTestScene(t, "alice")
	_ = sc.AddEntities([]PlayerEntry{entry("p1", "alice", 0, 0, nil), entry("p2", "bob", 0, 0, nil)})
	bob := sc.Sprites()[1]

	sc.RemoveSprite(NewRemoteController(testDescriptor("p2", "bob", 0, 0), DefaultConfig()))
	if len(sc.Sprites()) != 2 {
		t.Fatal("removed by value instead of reference")
	}
	sc.RemoveSprite(bob)
	if len(sc.Sprites()) != 1 {
		t.Fatalf("sprites = %d, want 1", len(sc.Sprites()))
	}
	if sc.routeUpdate("p2", snapshots(1)) {
		t.Fatal("removed remote still routed")
	}
}

func TestStartGameSetsPhase(t *testing.T) {
	sc, _, _ := newTestScene(t, "alice")
	if sc.Phase() != PhaseLobby {
		t.Fatalf("phase = %s", sc.Phase())
	}
	sc.StartGame()
	if sc.Phase() != PhaseRunGame {
		t.Fatalf("phase = %s", sc.Phase())
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = time.Millisecond
	cfg.FlushInterval = 2 * time.Millisecond
	tr := &recordTransport{}
	sc, err := NewScene(cfg, &recordSurface{}, tr)
	if err != nil {
		t.Fatal(err)
	}
	sc.SetLocalName("alice")
	sc.RequestEntities([]PlayerEntry{entry("p1", "alice", 380, 375, nil)})
	sc.OnInput(InputEvent{Kind: PointerMove, X: 800, Y: 400})
	sc.OnInput(InputEvent{Kind: PointerDown})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sc.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for tr.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if tr.count() == 0 {
		t.Fatal("no batch flushed while running")
	}
	if sc.Ambient().Ticks == 0 {
		t.Fatal("no ticks")
	}
}
