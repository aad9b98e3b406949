package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/resumegen/internal/model"
	"github.com/amishk599/resumegen/internal/notifier"
	"github.com/amishk599/resumegen/internal/storage"
	"github.com/amishk599/resumegen/internal/store"
)

var (
	notifyEnv  string
	notifyLast bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long: `Sends a sample deployment notification through the configured notifier.
With --last the most recent recorded deployment is re-sent instead.`,
	RunE: runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
	notifyTestCmd.Flags().StringVar(&notifyEnv, "env", "dev", "environment shown in the sample notification")
	notifyTestCmd.Flags().BoolVar(&notifyLast, "last", false, "re-send the latest deployment from history")
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !storage.ValidEnv(notifyEnv) {
		logger.Error("invalid environment", "env", notifyEnv, "valid", storage.Envs)
		os.Exit(1)
	}

	n := setupNotifier(cfg, newHTTPClient(), logger)

	if notifyLast {
		last, err := latestDeployment(cfg.Deploy.HistoryDB)
		if err != nil {
			logger.Error("failed to read history", "error", err)
			os.Exit(1)
		}
		if err := n.Notify([]model.Deployment{last}); err != nil {
			logger.Error("notification failed", "error", err)
			os.Exit(1)
		}
		logger.Info("re-sent latest deployment", "document", last.Document, "env", last.Env)
		return nil
	}

	if err := notifier.SendTestMessage(n, notifyEnv); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully", "env", notifyEnv)
	return nil
}

func latestDeployment(dbPath string) (model.Deployment, error) {
	sqlStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return model.Deployment{}, err
	}
	defer sqlStore.Close()

	recent, err := sqlStore.Recent(1)
	if err != nil {
		return model.Deployment{}, err
	}
	if len(recent) == 0 {
		return model.Deployment{}, fmt.Errorf("no deployments recorded in %s", dbPath)
	}
	return recent[0], nil
}
