package main

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/weather-lookup/internal/client"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/geo"
	"github.com/i474232898/weather-lookup/internal/tui"
	"github.com/i474232898/weather-lookup/internal/ui"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The program owns the terminal, so logs go to a file.
	logFile, err := tea.LogToFile(cfg.LogFile, "")
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logFile.Close()

	device := geo.NewDevice(
		geo.ParsePermission(cfg.Permission),
		cfg.PermissionQuery,
		geo.NewResolver(cfg.FixedPosition, cfg.GeoIPDatabase, cfg.GeoIPAddress),
	)

	gateway := client.New(cfg.GatewayURL, nil)

	bridge := tui.NewBridge()
	session := ui.New(bridge, gateway, device, ui.Options{
		DefaultCity:      cfg.DefaultCity,
		RepromptInterval: cfg.RepromptInterval,
		GeoTimeout:       cfg.GeoTimeout,
	})

	program := tea.NewProgram(tui.NewModel(bridge, session, device), tea.WithAltScreen())
	bridge.Attach(program)

	session.Start()
	defer session.Stop()

	log.Printf("INFO: session %s using gateway %s", session.ID(), cfg.GatewayURL)

	if _, err := program.Run(); err != nil {
		log.Printf("ERROR: terminal ui: %v", err)
	}
}
