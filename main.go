package main

import (
	"embed"
	"log/slog"

	"github.com/wailsapp/wails/v3/pkg/application"

	"github.com/sajjadalinaqvi/hospital-agent/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.Info("starting app", "version", version, "commit", commit, "date", date)
	svc := app.New(version)

	wapp := application.New(application.Options{
		Name:        "Hospital Agent",
		Description: "Clifton Hospital Voice Assistant",
		Services: []application.Service{
			application.NewService(svc),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
	})

	mainWindow := wapp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:  "Clifton Hospital Voice Assistant",
		Width:  1100,
		Height: 760,
		URL:    "/",
	})

	svc.Init(wapp, mainWindow)

	if err := wapp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
	svc.Shutdown()
}
