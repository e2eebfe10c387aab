package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var courtsCmd = &cobra.Command{
	Use:   "courts",
	Short: "List tracked courts",
	Args:  cobra.NoArgs,
	RunE:  runCourts,
}

func init() {
	rootCmd.AddCommand(courtsCmd)
}

type courtItem struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	ChainID            int64  `json:"chainId"`
	CurrentTermID      int64  `json:"currentTermId"`
	TermDuration       int64  `json:"termDuration"`
	FirstTermStartTime int64  `json:"firstTermStartTime"`
	UpdatedAt          string `json:"updatedAt"`
}

func runCourts(cmd *cobra.Command, _ []string) error {
	client := newAPIClient(apiURL, apiToken)

	var payload struct {
		Items []courtItem `json:"items"`
	}
	if err := client.get(cmd.Context(), "/api/courts", nil, &payload); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCHAIN\tTERM\tTERM DURATION\tUPDATED")
	for _, c := range payload.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			c.ID, c.Name, c.ChainID, c.CurrentTermID, formatMillis(c.TermDuration), c.UpdatedAt)
	}
	return w.Flush()
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "0"
	}
	return fmt.Sprintf("%gs", float64(ms)/1000)
}
