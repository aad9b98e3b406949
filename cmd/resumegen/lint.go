package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/resumegen/internal/lint"
)

var lintFlags struct {
	lang     string
	headings []string
}

var lintCmd = &cobra.Command{
	Use:   "lint-fix [files...]",
	Short: "Fix recurring markdownlint findings in place",
	Long: "Adds a language to bare code fences and ensures a single blank line before headings. " +
		"Files default to lint.files from the config.",
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().StringVar(&lintFlags.lang, "lang", "", "language for bare code fences (default: lint.fence_language)")
	lintCmd.Flags().StringSliceVar(&lintFlags.headings, "heading", nil, "restrict the blank-line fix to these headings, repeatable (default: lint.headings, or all)")
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	files := args
	if len(files) == 0 {
		files = cfg.Lint.Files
	}
	opts := lint.Options{
		FenceLanguage: firstNonEmpty(lintFlags.lang, cfg.Lint.FenceLanguage),
		Headings:      cfg.Lint.Headings,
	}
	if len(lintFlags.headings) > 0 {
		opts.Headings = lintFlags.headings
	}

	failed, fixed := 0, 0
	for _, path := range files {
		changes, err := lint.FixFile(path, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		if len(changes) == 0 {
			fmt.Printf("%s: no changes needed\n", path)
			continue
		}
		for _, c := range changes {
			fmt.Printf("%s: %s\n", path, c)
		}
		fixed += len(changes)
	}

	fmt.Printf("\n%d fixes applied across %d files\n", fixed, len(files))
	if failed > 0 {
		os.Exit(1)
	}
	return nil
}
