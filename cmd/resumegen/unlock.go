package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"github.com/amishk599/resumegen/internal/locks"
	"github.com/amishk599/resumegen/internal/model"
	"github.com/amishk599/resumegen/internal/tui"
)

var unlockFlags struct {
	table       string
	age         int
	region      string
	autoUnlock  bool
	interactive bool
}

var unlockCmd = &cobra.Command{
	Use:   "unlock-stale",
	Short: "Detect and optionally remove stale Terraform state locks",
	Long: "Scans the DynamoDB lock table used by the S3 backend and lists locks older than --age minutes. " +
		"Locks are only deleted with --auto-unlock or when picked in --interactive mode. " +
		"Deletion does not check that the lock is unchanged since the scan.",
	RunE: runUnlock,
}

func init() {
	rootCmd.AddCommand(unlockCmd)
	f := unlockCmd.Flags()
	f.StringVar(&unlockFlags.table, "table", "", "DynamoDB lock table name (default: locks.table)")
	f.IntVar(&unlockFlags.age, "age", 0, "age in minutes after which a lock is stale (default: locks.stale_after_minutes)")
	f.StringVar(&unlockFlags.region, "region", "", "AWS region (default: config region)")
	f.BoolVar(&unlockFlags.autoUnlock, "auto-unlock", false, "delete every stale lock found")
	f.BoolVar(&unlockFlags.interactive, "interactive", false, "pick the locks to delete in a terminal UI")
	unlockCmd.MarkFlagsMutuallyExclusive("auto-unlock", "interactive")
}

func runUnlock(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	table := firstNonEmpty(unlockFlags.table, cfg.Locks.Table)
	if table == "" {
		logger.Error("a lock table is required (--table or locks.table)")
		os.Exit(1)
	}
	age := unlockFlags.age
	if age == 0 {
		age = cfg.Locks.StaleAfterMinutes
	}
	if age <= 0 {
		logger.Error("--age must be positive", "age", age)
		os.Exit(1)
	}
	threshold := time.Duration(age) * time.Minute

	ctx := context.Background()
	awsCfg, err := loadAWSConfig(ctx, firstNonEmpty(unlockFlags.region, cfg.Region))
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	// The TUI owns the terminal in interactive mode.
	scanLogger := logger
	if unlockFlags.interactive {
		scanLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	scanner := locks.NewScanner(dynamodb.NewFromConfig(awsCfg), table, scanLogger)

	find := func(ctx context.Context) ([]model.StaleLock, error) {
		return scanner.FindStale(ctx, threshold, time.Now())
	}

	var stale []model.StaleLock
	if unlockFlags.interactive {
		stale, err = tui.RunLoader("Scanning "+table, 2*time.Minute, find)
	} else {
		stale, err = find(ctx)
	}
	if errors.Is(err, tui.ErrCancelled) {
		return nil
	}
	if err != nil {
		logger.Error("failed to scan lock table", "table", table, "error", err)
		os.Exit(1)
	}

	if len(stale) == 0 {
		fmt.Printf("No stale locks older than %d minutes found.\n", age)
		return nil
	}

	toDelete := stale
	switch {
	case unlockFlags.interactive:
		toDelete, err = tui.RunLockPicker(stale)
		if err != nil {
			logger.Error("lock picker failed", "error", err)
			os.Exit(1)
		}
		if len(toDelete) == 0 {
			fmt.Println("No locks deleted.")
			return nil
		}
	case unlockFlags.autoUnlock:
		fmt.Printf("Found %d stale locks:\n", len(stale))
		fmt.Println(tui.LocksTable(stale))
	default:
		fmt.Printf("Found %d stale locks:\n", len(stale))
		fmt.Println(tui.LocksTable(stale))
		fmt.Println("Run again with --auto-unlock (or --interactive) to delete these stale locks.")
		return nil
	}

	deleted, err := scanner.DeleteStale(ctx, toDelete)
	for _, l := range toDelete[:deleted] {
		fmt.Printf("Deleted lock: %s\n", l.LockID)
	}
	if err != nil {
		logger.Error("failed to delete lock", "deleted", deleted, "remaining", len(toDelete)-deleted, "error", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %d stale locks.\n", deleted)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
