package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"octoarena/client"
	"octoarena/game"
	"octoarena/logging"
	"octoarena/render"
)

// OctoArena 客户端：连接转发服务，登记后进入房间
func main() {
	var (
		url      string
		room     string
		name     string
		clr      string
		logPath  string
		headless bool
		backlog  int
	)
	flag.StringVar(&url, "url", "ws://localhost:8080/ws", "relay websocket url")
	flag.StringVar(&room, "room", "lobby", "room name")
	flag.StringVar(&name, "name", "", "player name")
	flag.StringVar(&clr, "color", "teal", "player color")
	flag.StringVar(&logPath, "log", "client.log", "log file path")
	flag.BoolVar(&headless, "headless", false, "run the tick loop without a window")
	flag.IntVar(&backlog, "backlog", 0, "max buffered snapshots per remote player, oldest dropped first (0 = unbounded)")
	flag.Parse()

	if err := logging.InitLogger(logPath, headless); err != nil {
		panic(err)
	}
	defer logging.SyncLogger()
	log := logging.Named("client")

	if name == "" {
		log.Fatal("-name is required")
	}
	if !game.ValidColor(clr) {
		log.Fatalf("unknown color %q, pick one of %v", clr, game.Colors)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := client.Dial(ctx, url)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	surface, err := render.NewSurface()
	if err != nil {
		log.Fatalf("surface: %v", err)
	}
	cfg := game.DefaultConfig()
	cfg.RemoteBacklogLimit = backlog
	scene, err := game.NewScene(cfg, surface, conn, game.DefaultObstacles(cfg)...)
	if err != nil {
		log.Fatalf("scene: %v", err)
	}
	scene.OnPlayersChanged = func(players []game.Descriptor) {
		names := make([]string, 0, len(players))
		for _, p := range players {
			names = append(names, p.Name)
		}
		log.Infow("players changed", "count", len(players), "names", names)
	}
	defer reportDropped(scene)
	session := client.NewSession(conn, scene, room, name, clr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := conn.Run(ctx, session); err != nil {
			log.Warnw("connection closed", "err", err)
		}
		cancel()
	}()

	if err := session.Join(); err != nil {
		log.Fatalf("join: %v", err)
	}
	log.Infow("joining", "room", room, "name", name, "color", clr)

	if headless {
		// 无窗口时表面未绑定，绘制为空操作
		if err := scene.Run(ctx); err != nil && err != context.Canceled {
			log.Warnw("tick loop stopped", "err", err)
		}
		return
	}

	scene.Start(ctx)
	defer scene.Close()
	if err := render.NewGame(ctx, scene, surface, session).Run("OctoArena - " + name); err != nil {
		log.Errorw("window closed", "err", err)
	}
}

// reportDropped 退出时记录因队列上限被丢弃的远端快照（Tick 线程已停止）
func reportDropped(scene *game.Scene) {
	for _, sp := range scene.Sprites() {
		rc, ok := sp.(*game.RemoteController)
		if !ok || rc.Dropped() == 0 {
			continue
		}
		logging.Log.Warnw("remote snapshots dropped", "player", rc.Descriptor().Name, "dropped", rc.Dropped())
	}
}
