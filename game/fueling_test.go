package game

import "testing"

func fuelingScene(t *testing.T) (*Scene, *FuelingStation) {
	t.Helper()
	sc, _, _ := newTestScene(t, "alice")
	err := sc.AddEntities([]PlayerEntry{
		entry("p1", "alice", 400, 400, &Coordinate{420, 420}),
		entry("p2", "bob", 100, 100, &Coordinate{110, 110}),
	})
	if err != nil {
		t.Fatal(err)
	}
	var own *FuelingStation
	for _, sp := range sc.Sprites() {
		if fs, ok := sp.(*FuelingStation); ok && fs.Descriptor().PlayerID == "p1" {
			own = fs
		}
	}
	if own == nil {
		t.Fatal("own station missing")
	}
	return sc, own
}

func dialogOf(sc *Scene) *FuelDialog {
	for _, sp := range sc.Sprites() {
		if d, ok := sp.(*FuelDialog); ok {
			return d
		}
	}
	return nil
}

func TestFuelingStationActivation(t *testing.T) {
	sc, own := fuelingScene(t)
	sc.Step()
	if !own.CanBeActivated() {
		t.Fatal("own station overlapping the local player must be activatable")
	}
	for _, sp := range sc.Sprites() {
		if fs, ok := sp.(*FuelingStation); ok && fs != own && fs.CanBeActivated() {
			t.Fatal("other player's station activated")
		}
	}
}

func TestFuelDialogLifecycle(t *testing.T) {
	sc, own := fuelingScene(t)

	sc.OnInput(InputEvent{Kind: KeyDown, Key: KeySpace})
	sc.Step()
	d := dialogOf(sc)
	if d == nil || !own.DialogOpen() {
		t.Fatal("dialog not opened")
	}

	// 按住空格不会重复打开
	sc.Step()
	n := 0
	for _, sp := range sc.Sprites() {
		if _, ok := sp.(*FuelDialog); ok {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("dialogs = %d, want 1", n)
	}
	sc.OnInput(InputEvent{Kind: KeyUp, Key: KeySpace})

	// f 边沿触发：按下 +5，按住不再增加，松开后回落
	sc.OnInput(InputEvent{Kind: KeyDown, Key: KeyF})
	sc.Step()
	if d.PercentFull() != 5 {
		t.Fatalf("percent = %v, want 5", d.PercentFull())
	}
	sc.Step()
	if d.PercentFull() != 4.5 {
		t.Fatalf("held f: percent = %v, want 4.5", d.PercentFull())
	}
	sc.OnInput(InputEvent{Kind: KeyUp, Key: KeyF})
	sc.Step()
	if d.PercentFull() != 4 {
		t.Fatalf("percent = %v, want 4", d.PercentFull())
	}

	sc.OnInput(InputEvent{Kind: PointerDown})
	sc.Step()
	if dialogOf(sc) != nil || own.DialogOpen() {
		t.Fatal("pointer press must close the dialog")
	}
}

func TestFuelDialogFillsToHundred(t *testing.T) {
	sc, _, _ := newTestScene(t, "")
	full := false
	d := NewFuelDialog(0, nil, func() { full = true })
	sc.AddSprite(d)

	for i := 0; i < 40 && !full; i++ {
		sc.OnInput(InputEvent{Kind: KeyDown, Key: KeyF})
		sc.Step()
		sc.OnInput(InputEvent{Kind: KeyUp, Key: KeyF})
		sc.Step()
	}
	if !full {
		t.Fatalf("never filled, percent = %v", d.PercentFull())
	}
	if d.PercentFull() != 100 {
		t.Fatalf("percent = %v, want 100", d.PercentFull())
	}
	// 满了以后不再回落
	sc.Step()
	if d.PercentFull() != 100 {
		t.Fatalf("percent decayed to %v", d.PercentFull())
	}

	s := &recordSurface{}
	d.Render(s)
	found := false
	for _, op := range s.ops {
		if op == "figure:upthumb:" {
			found = true
		}
	}
	if !found {
		t.Fatal("success figure not rendered")
	}
}

func TestFuelDialogCentersSuccessRow(t *testing.T) {
	d := NewFuelDialog(100, nil, nil)
	s := &recordSurface{}
	d.Render(s)

	text, ok := s.textAt["good job"]
	if !ok {
		t.Fatal("success text not rendered")
	}
	thumb, ok := s.figureAt[FigureUpthumb]
	if !ok {
		t.Fatal("success figure not rendered")
	}
	// 900x900 表面上 500x800 弹窗的原点为 (200, 50)
	if text.Y != 50+800-90 {
		t.Fatalf("baseline = %v, want 760", text.Y)
	}
	textWidth := s.MeasureText("good job", 42)
	if !approx(thumb.X, text.X+textWidth+15) {
		t.Fatalf("thumb x = %v, want %v", thumb.X, text.X+textWidth+15)
	}
	leftMargin := text.X - 200
	rightMargin := 200 + 500 - (thumb.X + s.figureDim[FigureUpthumb].Width)
	if !approx(leftMargin, rightMargin) {
		t.Fatalf("row not centered: left %v right %v", leftMargin, rightMargin)
	}
}

func TestFullyFueledStationReopensFull(t *testing.T) {
	sc, own := fuelingScene(t)
	own.fullyFueled = true
	sc.OnInput(InputEvent{Kind: KeyDown, Key: KeySpace})
	sc.Step()
	if d := dialogOf(sc); d == nil || d.PercentFull() != 100 {
		t.Fatal("dialog for fully fueled station must start at 100")
	}
}
