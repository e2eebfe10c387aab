package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"courtflow/phase"
)

var (
	resolveSnapshot string
	resolveAt       int64
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a dispute snapshot offline",
	Long: `Resolve runs the phase engine locally against a JSON snapshot file,
without contacting a daemon. The file holds the dispute and the court
configuration it is evaluated under:

  {"dispute": {...}, "config": {...}}`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveSnapshot, "snapshot", "", "path to the snapshot JSON file")
	resolveCmd.Flags().Int64Var(&resolveAt, "at", 0, "evaluate as of this unix millisecond timestamp (required)")
	_ = resolveCmd.MarkFlagRequired("snapshot")
	_ = resolveCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(resolveCmd)
}

type snapshotFile struct {
	Dispute phase.Dispute     `json:"dispute"`
	Config  phase.CourtConfig `json:"config"`
}

func runResolve(_ *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(resolveSnapshot)
	if err != nil {
		return fmt.Errorf("courtctl: read snapshot: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("courtctl: parse snapshot: %w", err)
	}

	current, err := phase.Resolve(snap.Dispute, snap.Config, resolveAt)
	if err != nil {
		return err
	}
	timeline, err := phase.BuildTimeline(snap.Dispute, snap.Config, resolveAt)
	if err != nil {
		return err
	}

	out := struct {
		Current  phase.Result         `json:"current"`
		Timeline []phase.TimelineItem `json:"timeline"`
	}{current, timeline}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
