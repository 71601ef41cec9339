package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/kozaktomas/face-attendance/internal/vision"
	"github.com/spf13/cobra"
)

var enrolledCmd = &cobra.Command{
	Use:   "enrolled [external-id]",
	Short: "List enrolled people",
	Long: `List everyone known to the system: external ids enrolled in the face
gallery merged with the identity records in the database, so ids present
in only one of the two stand out.

With an external id argument, print that person's most recent attendance
events instead.

Example:
  face-attendance enrolled
  face-attendance enrolled E001`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnrolled,
}

func init() {
	rootCmd.AddCommand(enrolledCmd)
	enrolledCmd.Flags().Int("limit", 20, "Maximum attendance events to show for one person")
}

func runEnrolled(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		return printRecentAttendance(ctx, pool, args[0], mustGetInt(cmd, "limit"))
	}

	provider, err := vision.NewRekognitionFromConfig(ctx, &cfg.Vision)
	if err != nil {
		return fmt.Errorf("failed to configure Rekognition: %w", err)
	}
	return printEnrolled(ctx, pool, provider)
}

// printEnrolled merges gallery ids with identity records. An id missing on
// either side is marked so operators can spot half-enrolled people.
func printEnrolled(ctx context.Context, pool *postgres.Pool, provider vision.Provider) error {
	galleryIDs, err := provider.ListEnrolledIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list enrolled ids: %w", err)
	}

	identities, err := postgres.NewIdentityRepository(pool).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list identities: %w", err)
	}

	inGallery := make(map[string]bool, len(galleryIDs))
	for _, id := range galleryIDs {
		inGallery[id] = true
	}

	names := make(map[string]string, len(identities))
	all := make([]string, 0, len(identities))
	for _, identity := range identities {
		names[identity.ExternalID] = identity.DisplayName
		all = append(all, identity.ExternalID)
	}
	for _, id := range galleryIDs {
		if _, ok := names[id]; !ok {
			all = append(all, id)
		}
	}
	sort.Strings(all)

	if len(all) == 0 {
		fmt.Println("No one enrolled.")
		return nil
	}

	for _, id := range all {
		name, hasIdentity := names[id]
		switch {
		case !hasIdentity:
			name = "(no identity record)"
		case !inGallery[id]:
			name += " (no faces in gallery)"
		}
		fmt.Printf("%-16s %s\n", id, name)
	}
	fmt.Printf("\n%d total, %d with faces in the gallery\n", len(all), len(galleryIDs))
	return nil
}

// printRecentAttendance shows the latest attendance events for one person.
func printRecentAttendance(ctx context.Context, pool *postgres.Pool, externalID string, limit int) error {
	externalID = attendance.NormalizeExternalID(externalID)

	identity, err := postgres.NewIdentityRepository(pool).Get(ctx, externalID)
	if err != nil {
		return fmt.Errorf("failed to load identity %s: %w", externalID, err)
	}
	name := attendance.UnknownDisplayName
	if identity != nil {
		name = identity.DisplayName
	}

	events, err := postgres.NewAttendanceRepository(pool).RecentByExternalID(ctx, externalID, limit)
	if err != nil {
		return fmt.Errorf("failed to load attendance for %s: %w", externalID, err)
	}

	fmt.Printf("%s (%s)\n", name, externalID)
	if len(events) == 0 {
		fmt.Println("No attendance recorded.")
		return nil
	}
	for _, event := range events {
		fmt.Printf("  %s\n", event.RecordedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("\n%d event(s)\n", len(events))
	return nil
}
