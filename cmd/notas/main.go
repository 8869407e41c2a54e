package main

import (
	"context"
	"log"

	"github.com/fatih/color"

	"notas-client/internal/bootstrap"
	"notas-client/internal/config"
	"notas-client/internal/server"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Logger.Sync()

	// 3. Start the state-push hub and the synchronizer
	go container.Hub.Run()

	stop := container.SyncService.Start()
	defer stop()

	stateSub := container.SyncService.OnStateChanged(container.Hub.BroadcastState)
	defer stateSub.Unsubscribe()

	// 4. Recover any already-established session; this kicks off the first
	// reload if a cached session is still valid.
	if err := container.SessionStore.Load(context.Background()); err != nil {
		log.Printf("Session recovery failed: %v", err)
	}
	defer container.SessionStore.Close()

	// 5. Run the local view server
	color.Cyan("Notas client listening on http://localhost:%s (backend: %s)", cfg.App.Port, cfg.Remote.BaseURL)

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
