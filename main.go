package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"invaders/server"
)

// Authoritative server for the multiplayer invaders game: one shared world,
// fixed-tick simulation, WebSocket sessions.
func main() {
	var addr, logPath string
	flag.StringVar(&addr, "addr", ":5123", "server listen address, e.g. :5123")
	flag.StringVar(&logPath, "log", "server.log", "log file path")
	flag.Parse()

	if err := server.InitLogger(logPath); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	game := server.NewGame(server.DefaultTuning())
	game.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", game.HandleWS)
	mux.HandleFunc("/admin/config", game.HandleAdminConfig)
	mux.HandleFunc("/metrics", game.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		server.Log.Infof("invaders server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("shutting down...")
	game.Stop()
	_ = srv.Close()
}
