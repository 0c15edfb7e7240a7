package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long:  `View and configure generation and retrieval settings.`,
	RunE:  runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one setting and persist it.

Available keys:
  temperature     - Model sampling temperature, (0, 2]
  top-k           - Top-K sampling parameter, (0, 100]
  max-recent      - Conversation turns kept as model context
  max-sources     - Knowledge sources retrieved per query
  min-similarity  - Minimum similarity for grounding, [0, 1]
  chunk-size      - Chunk size in characters
  chunk-overlap   - Overlap between chunks in characters`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all settings to defaults",
	RunE:  runSettingsReset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s := settingsService.Get()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Println("[Generation]")
	cmd.Printf("  temperature:    %g\n", s.Temperature)
	cmd.Printf("  top-k:          %d\n", s.TopK)
	cmd.Printf("  max-recent:     %d\n", s.MaxRecentMessages)
	cmd.Println()
	cmd.Println("[Retrieval]")
	cmd.Printf("  max-sources:    %d\n", s.MaxSources)
	cmd.Printf("  min-similarity: %g\n", s.MinSimilarityThreshold)
	cmd.Printf("  chunk-size:     %d\n", s.ChunkSize)
	cmd.Printf("  chunk-overlap:  %d\n", s.ChunkOverlap)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	s := settingsService.Get()

	if err := applySetting(&s, key, value); err != nil {
		return err
	}

	if err := settingsService.Update(context.Background(), s); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Update(context.Background(), domain.DefaultSettings()); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}

	cmd.Println("Settings reset to defaults.")
	return nil
}

// applySetting parses value into the named field of s.
func applySetting(s *domain.Settings, key, value string) error {
	switch key {
	case "temperature":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid temperature %q: %w", value, err)
		}
		s.Temperature = v
	case "top-k":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid top-k %q: %w", value, err)
		}
		s.TopK = v
	case "max-recent":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max-recent %q: %w", value, err)
		}
		s.MaxRecentMessages = v
	case "max-sources":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max-sources %q: %w", value, err)
		}
		s.MaxSources = v
	case "min-similarity":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid min-similarity %q: %w", value, err)
		}
		s.MinSimilarityThreshold = v
	case "chunk-size":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid chunk-size %q: %w", value, err)
		}
		s.ChunkSize = v
	case "chunk-overlap":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid chunk-overlap %q: %w", value, err)
		}
		s.ChunkOverlap = v
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
