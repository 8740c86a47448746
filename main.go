package main

import (
	"embed"
	"log"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"multivision/backend"
)

// Wails uses Go's `embed` package to embed the frontend files into the binary.
// Any files in the frontend/dist folder will be embedded into the binary and
// made available to the frontend.
// See https://pkg.go.dev/embed for more information.

//go:embed all:frontend/dist
var assets embed.FS

// main function serves as the application's entry point. It initializes the
// services, creates the main window, and starts the application.
func main() {
	if err := ensureWebView2(); err != nil {
		log.Fatal(err)
	}

	configService := backend.NewConfigService()
	config := configService.GetConfig()

	showService := backend.NewShowService()

	app := application.New(application.Options{
		Name:        "Multivision",
		Description: "A slideshow authoring and playback tool for stills, video and GPS tracks",
		Services: []application.Service{
			application.NewService(showService),
			application.NewService(configService),
		},
		Assets: application.AssetOptions{
			Handler: application.AssetFileServerFS(assets),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: true,
		},
	})

	// Set the app instance in the service so it can emit events
	showService.SetApp(app)

	window := app.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:             "Multivision",
		EnableDragAndDrop: true,
		Mac: application.MacWindow{
			InvisibleTitleBarHeight: 50,
			Backdrop:                application.MacBackdropTranslucent,
			TitleBar:                application.MacTitleBarHiddenInset,
		},
		BackgroundColour: application.NewRGB(20, 20, 24),
		URL:              "/",
		Width:            config.WindowWidth,
		Height:           config.WindowHeight,
	})

	// Dropping a directory onto the window imports its media files
	window.OnWindowEvent(events.Common.WindowFilesDropped, func(event *application.WindowEvent) {
		paths := event.Context().DroppedFiles()
		log.Printf("Files dropped: %v", paths)

		for _, path := range paths {
			if err := showService.ImportDirectoryAsync(path); err != nil {
				log.Printf("Error importing %s: %v", path, err)
			}
		}
	})

	err := app.Run()
	if err != nil {
		log.Fatal(err)
	}
}
