package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"octoarena/logging"
	"octoarena/server"
)

// OctoArena 转发服务入口：登记房间/玩家，并在房间内盲转发玩家状态
func main() {
	var (
		addr    string
		dbPath  string
		logPath string
		limit   float64
		burst   int
	)
	flag.StringVar(&addr, "addr", ":8080", "server listen address, e.g. :8080")
	flag.StringVar(&dbPath, "db", "db.json", "flat-file registry path (empty keeps it in memory)")
	flag.StringVar(&logPath, "log", "app.log", "log file path")
	flag.Float64Var(&limit, "rate", 50, "inbound messages per second allowed per connection")
	flag.IntVar(&burst, "burst", 100, "inbound message burst per connection")
	flag.Parse()

	if err := logging.InitLogger(logPath, true); err != nil {
		panic(err)
	}
	defer logging.SyncLogger()

	reg, err := server.OpenRegistry(dbPath)
	if err != nil {
		logging.Log.Fatalf("open registry: %v", err)
	}
	rm := server.NewRoomManager(reg, limit, burst)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", rm.HandleWS)
	// 管理与监控接口
	mux.HandleFunc("/admin/room", rm.HandleAdminRoom)
	mux.HandleFunc("/metrics", rm.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logging.Log.Infof("OctoArena relay listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
