package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"courtflow/phase"
)

var (
	disputesCourt string
	disputesState string
	disputeAt     int64
	disputeJSON   bool
)

var disputesCmd = &cobra.Command{
	Use:   "disputes",
	Short: "List mirrored disputes",
	Args:  cobra.NoArgs,
	RunE:  runDisputes,
}

var disputeCmd = &cobra.Command{
	Use:   "dispute <id>",
	Short: "Show one dispute with its current phase and timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runDispute,
}

func init() {
	disputesCmd.Flags().StringVar(&disputesCourt, "court", "", "filter by court address")
	disputesCmd.Flags().StringVar(&disputesState, "state", "", "filter by on-chain state (Evidence, JuryDrafting, Adjudicating, Ruled)")
	disputeCmd.Flags().Int64Var(&disputeAt, "at", 0, "evaluate as of this unix millisecond timestamp")
	disputeCmd.Flags().BoolVar(&disputeJSON, "json", false, "print the raw JSON response")
	rootCmd.AddCommand(disputesCmd)
	rootCmd.AddCommand(disputeCmd)
}

type disputeItem struct {
	ID          string `json:"id"`
	CourtID     string `json:"courtId"`
	State       string `json:"state"`
	LastRoundID uint64 `json:"lastRoundId"`
	CreatedAt   int64  `json:"createdAt"`
	SyncedAt    string `json:"syncedAt"`
}

type disputeDetail struct {
	disputeItem
	Current  phase.Result         `json:"current"`
	Timeline []phase.TimelineItem `json:"timeline"`
}

func runDisputes(cmd *cobra.Command, _ []string) error {
	client := newAPIClient(apiURL, apiToken)

	query := url.Values{}
	if disputesCourt != "" {
		query.Set("court", disputesCourt)
	}
	if disputesState != "" {
		query.Set("state", disputesState)
	}

	var payload struct {
		Items []disputeItem `json:"items"`
	}
	if err := client.get(cmd.Context(), "/api/disputes", query, &payload); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOURT\tSTATE\tROUND\tCREATED\tSYNCED")
	for _, d := range payload.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			d.ID, d.CourtID, d.State, d.LastRoundID, formatTimestamp(d.CreatedAt), d.SyncedAt)
	}
	return w.Flush()
}

func runDispute(cmd *cobra.Command, args []string) error {
	client := newAPIClient(apiURL, apiToken)

	query := url.Values{}
	if disputeAt > 0 {
		query.Set("at", fmt.Sprintf("%d", disputeAt))
	}

	var detail disputeDetail
	if err := client.get(cmd.Context(), "/api/disputes/"+url.PathEscape(args[0]), query, &detail); err != nil {
		return err
	}

	if disputeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	}

	printDetail(detail)
	return nil
}

func printDetail(detail disputeDetail) {
	fmt.Printf("Dispute %s (court %s, round %d)\n", detail.ID, detail.CourtID, detail.Current.RoundID)
	fmt.Printf("Phase: %s\n", detail.Current.Phase)
	if detail.Current.NextTransition != nil {
		fmt.Printf("Next transition: %s\n", formatTimestamp(*detail.Current.NextTransition))
	}
	if detail.Current.Ruling != nil {
		fmt.Printf("Appealed ruling: %d\n", *detail.Current.Ruling)
	}

	fmt.Println("\nTimeline:")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PHASE\tROUND\tENDS\tACTIVE")
	for _, item := range detail.Timeline {
		marker := ""
		if item.Active {
			marker = "*"
		}
		end := "-"
		if item.EndTime > 0 {
			end = formatTimestamp(item.EndTime)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", item.Phase, item.RoundID, end, marker)
	}
	w.Flush()
}

func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
