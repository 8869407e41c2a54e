package bootstrap

import (
	"time"

	"notas-client/internal/auth"
	"notas-client/internal/config"
	"notas-client/internal/controller"
	"notas-client/internal/gateway/rest"
	"notas-client/internal/pkg/logger"
	"notas-client/internal/service"
	"notas-client/internal/websocket"
)

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	StateController  controller.IStateController
	NoteController   controller.INoteController
	FolderController controller.IFolderController

	// Core collaborators (exposed for main.go to run/teardown)
	SessionStore auth.ISessionStore
	SyncService  service.ISyncService
	Hub          *websocket.Hub
	Logger       logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	timeout := time.Duration(cfg.Remote.TimeoutSeconds) * time.Second

	// Remote collaborators
	authGateway := auth.NewRestGateway(cfg.Remote.BaseURL, cfg.Remote.AnonKey, timeout)
	sessionStore := auth.NewSessionStore(authGateway, sysLogger, cfg.App.SessionCachePath)

	restClient := rest.NewClient(cfg.Remote.BaseURL, cfg.Remote.AnonKey, timeout, func() string {
		if session := sessionStore.Current(); session != nil {
			return session.AccessToken
		}
		return ""
	})
	dataGateway := rest.NewGateway(restClient)

	// Core
	syncService := service.NewSyncService(dataGateway, sessionStore, sysLogger)
	hub := websocket.NewHub(sysLogger)

	return &Container{
		AuthController:   controller.NewAuthController(sessionStore),
		StateController:  controller.NewStateController(syncService),
		NoteController:   controller.NewNoteController(syncService),
		FolderController: controller.NewFolderController(syncService),

		SessionStore: sessionStore,
		SyncService:  syncService,
		Hub:          hub,
		Logger:       sysLogger,
	}
}
