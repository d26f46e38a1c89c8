package main

import (
	"log"
	"os"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/jarvisai/assistant-go/app/bootstrap"
	"github.com/jarvisai/assistant-go/internal/logger"
)

func main() {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	if p, err := strconv.Atoi(port); err == nil {
		web.BConfig.Listen.HTTPPort = p
	} else {
		web.BConfig.Listen.HTTPPort = 8080
	}

	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	web.BConfig.AppName = "JARVIS Assistant"
	web.BConfig.CopyRequestBody = true

	logger.Info("🚀 Starting JARVIS Assistant", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
