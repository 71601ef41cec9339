package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/kozaktomas/face-attendance/internal/vision"
	"github.com/kozaktomas/face-attendance/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Attendance web server.
The server accepts photo uploads, recognizes enrolled faces in them and
records one attendance event per positive match.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides SERVER_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides SERVER_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Server.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Server.Host = host
	}

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()

	provider, err := vision.NewRekognitionFromConfig(ctx, &cfg.Vision)
	if err != nil {
		return fmt.Errorf("failed to configure Rekognition: %w", err)
	}
	if err := provider.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to prepare face collection %s: %w", cfg.Vision.CollectionID, err)
	}
	fmt.Printf("Face collection %s ready\n", cfg.Vision.CollectionID)

	identities := postgres.NewIdentityRepository(pool)
	attendanceRepo := postgres.NewAttendanceRepository(pool)

	server := web.NewServer(cfg, web.Deps{
		Recognizer: attendance.NewRecognizer(provider, identities, attendanceRepo, cfg.Vision.MatchThreshold),
		Enroller:   attendance.NewEnroller(provider, identities),
		Attendance: attendanceRepo,
		Provider:   provider,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Attendance on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
