package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/resumegen/internal/render"
	"github.com/amishk599/resumegen/internal/tui"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect model candidates and inference profiles",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates and system-defined inference profiles",
	RunE:  runModelsList,
}

var modelsResolveCmd = &cobra.Command{
	Use:   "resolve <model-id>",
	Short: "Show the inference profile a model would fall back to",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsResolve,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd, modelsResolveCmd)
}

func runModelsList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Println("Candidates (in order):")
	for i, id := range candidateList(cfg, "") {
		fmt.Printf("  %d. %s\n", i+1, id)
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	awsCfg, err := loadAWSConfig(ctx, cfg.Region)
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	profiles, err := setupRegistry(cfg, awsCfg).ListProfiles(ctx)
	if err != nil {
		logger.Error("failed to list inference profiles", "error", err)
		os.Exit(1)
	}
	if len(profiles) == 0 {
		fmt.Println("No system-defined inference profiles.")
		return nil
	}
	fmt.Println(tui.ProfilesTable(profiles))
	return nil
}

func runModelsResolve(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	awsCfg, err := loadAWSConfig(ctx, cfg.Region)
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	prefix := render.ModelPrefix(args[0])
	resolver := render.NewProfileResolver(setupRegistry(cfg, awsCfg), logger)
	profile, ok := resolver.Resolve(ctx, prefix)
	if !ok {
		fmt.Printf("No inference profile serves %s\n", prefix)
		return nil
	}
	fmt.Printf("%s -> %s\n", prefix, profile.ID)
	return nil
}
