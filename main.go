package main

import (
	"context"
	"errorwatch/cli"
	"errorwatch/config"
	"errorwatch/database"
	"errorwatch/handlers"
	"errorwatch/service"
	"errorwatch/state"
	"errorwatch/version"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath, config.Settings.LogLevel == "DEBUG")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if config.Settings.EmitMessage != "" {
		code := mainEmit(config.Settings.EmitMessage)
		logFile.Close()
		os.Exit(code)
	}

	if config.Settings.CLIMode {
		mainCLI()
		return
	}

	log.Printf("errorwatch collector %s starting up...", version.GetFullVersion())

	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	service.InitServices(database.DB, state.NewHub(config.Settings.StreamBufferSize), config.Settings.MaxStoredErrors)

	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()
	gin.DisableConsoleColor()

	r := gin.Default()

	// Reporters post from arbitrary origins
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Content-type"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	handlers.RegisterRoutes(r)

	port := findAvailablePort(config.Settings.Port)
	if port != config.Settings.Port {
		log.Printf("Default port %d is busy. Switched to %d", config.Settings.Port, port)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Collector listening on http://127.0.0.1:%d/api/errors", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	fmt.Printf("errorwatch collector listening on http://127.0.0.1:%d (logs: %s)\n", port, config.Settings.LogFilePath)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Received interrupt signal, shutting down...")

	// Stop accepting ingests before closing live streams and the database
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	service.GlobalServices.Hub.Close()

	if err := database.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server exited")
}

// findAvailablePort searches for an available port
func findAvailablePort(startPort int) int {
	for port := startPort; port < startPort+100; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
		if err == nil {
			listener.Close()
			return port
		}
	}
	log.Fatal("No available ports found")
	return startPort
}

// mainCLI entrypoint for CLI (HTTP client mode)
func mainCLI() {
	serverURL := config.Settings.CLIServer
	fmt.Printf("errorwatch CLI - Connecting to %s\n", serverURL)

	shell, err := cli.NewCLI(serverURL)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the collector is running:")
		fmt.Println("     ./errorwatch")
		fmt.Println("  2. Or specify a different server:")
		fmt.Println("     ./errorwatch --cli --server http://your-server:7789")
		os.Exit(1)
	}

	shell.Start()
}
