package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/AtlasData/atlas-insight-go/pkg/config"
	"github.com/AtlasData/atlas-insight-go/utils"
)

func main() {
	cfg := config.LoadConfig()

	logger := utils.GetLogger()
	logger.SetLevel(utils.ParseLogLevel(cfg.LogLevel))
	logger.SetFormat(cfg.LogFormat)

	server, err := NewServer(cfg)
	if err != nil {
		logger.Error("Failed to initialize server", err, utils.Component("main"))
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down", utils.Component("main"))
		server.Shutdown()
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		logger.Error("Server stopped", err, utils.Component("main"))
		os.Exit(1)
	}
}
