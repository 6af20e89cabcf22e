package main

import (
	"os"
	"os/signal"
	"syscall"

	"studentresults/internal/config"
	"studentresults/internal/database"
	"studentresults/internal/handler"
	"studentresults/internal/logging"
	"studentresults/internal/service"
)

func main() {
	cfg, err := config.Load()
	logger := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize storage backend
	backend, err := database.Open(cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	// Initialize services
	studentService := service.NewStudentService(backend, logger)

	if cfg.ImportCSV != "" {
		importService := service.NewImportService(studentService, logger)
		if _, err := importService.ImportCSV(cfg.ImportCSV); err != nil {
			logger.Error("import failed", "file", cfg.ImportCSV, "error", err)
		}
	}

	// Save before terminating on SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-ch
		if err := studentService.Save(); err != nil {
			logger.Error("save on signal failed", "signal", sig.String(), "location", studentService.Location(), "error", err)
			os.Exit(1)
		}
		logger.Info("saved on signal", "signal", sig.String())
		os.Exit(0)
	}()

	console := handler.NewConsole(os.Stdin, os.Stdout)
	studentHandler := handler.NewStudentHandler(studentService, console)

	if err := handler.NewMenu(studentHandler, console).Run(); err != nil {
		logger.Error("exiting without a successful save", "error", err)
		os.Exit(1)
	}
}
