package cli

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/anvil-ide/anvil/internal/api/handlers"
	"github.com/anvil-ide/anvil/internal/api/middleware"
	"github.com/anvil-ide/anvil/internal/builder"
	"github.com/anvil-ide/anvil/internal/command"
	"github.com/anvil-ide/anvil/internal/config"
	"github.com/anvil-ide/anvil/internal/crypto"
	"github.com/anvil-ide/anvil/internal/history"
	"github.com/anvil-ide/anvil/internal/logger"
	"github.com/anvil-ide/anvil/internal/runsession"
	"github.com/anvil-ide/anvil/internal/settings"
	"github.com/anvil-ide/anvil/internal/websocket"
)

var serveFlags struct {
	addr         string
	settingsPath string
	databasePath string
	debug        bool
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (overrides PORT)")
	serveCmd.Flags().StringVar(&serveFlags.settingsPath, "settings", "", "toolchain settings file")
	serveCmd.Flags().StringVar(&serveFlags.databasePath, "db", "", "build history database file")
	serveCmd.Flags().BoolVar(&serveFlags.debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the engine daemon",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
	},
}

func runServe() error {
	overrides := config.Overrides{
		Addr:         &serveFlags.addr,
		SettingsPath: &serveFlags.settingsPath,
		DatabasePath: &serveFlags.databasePath,
	}
	if serveFlags.debug {
		overrides.Debug = &serveFlags.debug
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return err
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Infof("opening build history database: %s", cfg.DatabasePath)
	hist, err := history.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer hist.Close()

	logger.Infof("loading toolchain settings: %s", cfg.SettingsPath)
	settingsStore, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		return err
	}

	jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		return err
	}

	wsServer := websocket.NewServer(jwtManager)
	sessions := runsession.NewManager(wsServer)
	orchestrator := builder.New(settingsStore, command.ExecRunner{}, sessions, wsServer, hist)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))
	router.Use(middleware.LoggingMiddleware())

	// Plain-text root for client reachability checks.
	router.GET("/", func(c *gin.Context) {
		c.String(200, "Welcome to Anvil Engine!")
	})

	authHandler := handlers.NewAuthHandler(jwtManager, cfg.MasterSecret)
	buildHandler := handlers.NewBuildHandler(orchestrator, hist)
	runHandler := handlers.NewRunHandler(sessions)
	settingsHandler := handlers.NewSettingsHandler(settingsStore)

	v1 := router.Group("/v1")
	{
		v1.POST("/auth", authHandler.PostAuth)
		// Token auth happens inside the handshake; see websocket.Server.
		v1.GET("/updates", wsServer.HandleUpdates)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))
	{
		protected.POST("/builds", buildHandler.PostBuild)
		protected.GET("/builds", buildHandler.ListBuilds)
		protected.GET("/run", runHandler.GetRun)
		protected.DELETE("/run", runHandler.DeleteRun)
		protected.GET("/settings", settingsHandler.GetSettings)
		protected.PUT("/settings", settingsHandler.PutSettings)
	}

	logger.Infof("listening on %s", cfg.Addr)
	return router.Run(cfg.Addr)
}
