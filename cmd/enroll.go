package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/kozaktomas/face-attendance/internal/vision"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <external-id> <full-name> <photo-or-folder> [photo-or-folder...]",
	Short: "Enroll a person from photo files",
	Long: `Enroll a person into the face gallery from local photo files.

Each argument may be a single image file or a folder; folders are scanned
for supported images (non-recursive). The external id is uppercased before
it is stored, so E001 and e001 refer to the same person.

Example:
  face-attendance enroll E001 "Ada Lovelace" /path/to/ada.jpg
  face-attendance enroll E001 "Ada Lovelace" /path/to/ada-photos/`,
	Args: cobra.MinimumNArgs(3),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}

// isImageFile checks if a file has a supported image extension
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".bmp":
		return true
	}
	return false
}

// collectPhotoFiles expands file and folder arguments into image file paths.
func collectPhotoFiles(args []string) ([]string, error) {
	var filePaths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			filePaths = append(filePaths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read folder %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if isImageFile(entry.Name()) {
				filePaths = append(filePaths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return filePaths, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	externalID := args[0]
	fullName := args[1]

	filePaths, err := collectPhotoFiles(args[2:])
	if err != nil {
		return err
	}
	if len(filePaths) == 0 {
		return errors.New("no image files found in the specified paths")
	}

	cfg := config.Load()
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

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

	enroller := attendance.NewEnroller(provider, postgres.NewIdentityRepository(pool))

	fmt.Printf("Enrolling %s as %s from %d photo(s)\n\n",
		attendance.NormalizeExternalID(externalID), fullName, len(filePaths))

	enrollBar := progressbar.NewOptions(len(filePaths),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	// Photos are enrolled one at a time so a failed photo is reported and
	// skipped instead of aborting the rest.
	var (
		indexed      int
		enrollErrors []string
	)
	for _, filePath := range filePaths {
		fileName := filepath.Base(filePath)

		photo, err := os.ReadFile(filePath)
		if err != nil {
			enrollErrors = append(enrollErrors, fmt.Sprintf("%s: %v", fileName, err))
			enrollBar.Add(1)
			continue
		}

		if err := enroller.Enroll(ctx, fullName, externalID, [][]byte{photo}); err != nil {
			if errors.Is(err, attendance.ErrValidation) {
				return err
			}
			enrollErrors = append(enrollErrors, fmt.Sprintf("%s: %v", fileName, err))
			enrollBar.Add(1)
			continue
		}
		indexed++
		enrollBar.Add(1)
	}
	fmt.Println()

	for _, errMsg := range enrollErrors {
		fmt.Printf("Failed: %s\n", errMsg)
	}

	if indexed == 0 {
		return fmt.Errorf("no photos were enrolled successfully")
	}

	fmt.Printf("\nDone! Enrolled %d photo(s) for %s\n", indexed, fullName)
	return nil
}
