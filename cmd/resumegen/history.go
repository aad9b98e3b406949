package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/resumegen/internal/store"
	"github.com/amishk599/resumegen/internal/tui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent deployments",
	Long:  "Reads the deployment history database and prints the most recent deployments.",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of deployments to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Deploy.HistoryDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open history: %v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	deployments, err := sqlStore.Recent(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read history: %v\n", err)
		os.Exit(1)
	}
	if len(deployments) == 0 {
		fmt.Println("No deployments recorded yet.")
		return nil
	}

	fmt.Println(tui.DeploymentsTable(deployments))
	fmt.Printf("\nShowing %d most recent deployments\n", len(deployments))
	return nil
}
