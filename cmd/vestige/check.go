package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/panbanda/vestige/internal/output"
	"github.com/panbanda/vestige/internal/progress"
	"github.com/panbanda/vestige/internal/scanner"
	"github.com/panbanda/vestige/pkg/analyzer/deadexports"
	"github.com/panbanda/vestige/pkg/config"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Detect dead exports, files, and folders",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("barrel", "", "Barrel file policy: lenient or strict")
	checkCmd.Flags().Int("workers", 0, "Parse worker count (0 = 2x NumCPU)")
	checkCmd.Flags().Bool("exit-zero", false, "Exit 0 even when errors are found")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if barrel, _ := cmd.Flags().GetString("barrel"); barrel != "" {
		cfg.Policy.BarrelMode = barrel
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Analysis.Workers = workers
	}

	spinner := progress.NewSpinner("Scanning sources...")
	files, err := scanner.NewScanner(cfg).ScanDir(root)
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("scan failed: %w", err)
	}
	files, skipped := scanner.FilterBySize(files, cfg.Analysis.MaxFileSize)
	if len(files) == 0 {
		spinner.FinishSkipped("no source files found")
		return nil
	}
	spinner.FinishSuccess()
	if verbose && skipped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d oversized files\n", skipped)
	}

	tracker := progress.NewTracker("Analyzing exports...", len(files))
	a := deadexports.New(
		deadexports.WithRoot(absRoot),
		deadexports.WithWorkers(cfg.Analysis.Workers),
		deadexports.WithMaxPasses(cfg.Analysis.MaxPasses),
		deadexports.WithMaxFileSize(cfg.Analysis.MaxFileSize),
		deadexports.WithRootAlias(cfg.Resolve.RootAlias, cfg.Resolve.AliasTarget),
		deadexports.WithExtensions(cfg.Resolve.Extensions),
		deadexports.WithBarrelMode(cfg.Policy.BarrelMode),
		deadexports.WithPageDirs(cfg.Policy.PageDirs),
		deadexports.WithExemptSuffixes(cfg.Policy.ExemptSuffixes),
		deadexports.WithUnusedImports(cfg.Analysis.UnusedImports),
		deadexports.WithUnusedSymbols(cfg.Analysis.UnusedSymbols),
		deadexports.WithIgnorePatterns(cfg.Exclude.Patterns),
		deadexports.WithProgress(tracker.Tick),
	)
	defer a.Close()

	result, err := a.Analyze(context.Background(), files)
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat()), outputFile, cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		if err := formatter.Output(result); err != nil {
			return err
		}
	} else {
		if err := renderResult(formatter, result); err != nil {
			return err
		}
	}

	errorCount := 0
	for _, issue := range result.Issues {
		if issue.Severity == deadexports.SeverityError {
			errorCount++
		}
	}
	if exitZero, _ := cmd.Flags().GetBool("exit-zero"); errorCount > 0 && !exitZero {
		return fmt.Errorf("%d errors found", errorCount)
	}
	return nil
}

func renderResult(formatter *output.Formatter, result *deadexports.Analysis) error {
	if len(result.Issues) == 0 {
		formatter.Success("No dead exports found")
	}

	report := &output.Report{Title: "Dead Export Report", Data: result}

	if len(result.Issues) > 0 {
		var rows [][]string
		for _, issue := range result.Issues {
			symbol := issue.Symbol
			switch issue.Kind {
			case deadexports.IssueDeadFile:
				symbol = "(file)"
			case deadexports.IssueDeadFolder:
				symbol = "(folder)"
			}
			severity := string(issue.Severity)
			if formatter.Colored() {
				severity = output.SeverityColor(severity, severity)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%s:%d", issue.File, issue.Line),
				string(issue.Kind),
				symbol,
				severity,
				issue.Message,
			})
		}
		report.Sections = append(report.Sections, output.NewTable(
			"Dead Code Issues",
			[]string{"Location", "Kind", "Symbol", "Severity", "Message"},
			rows,
			nil,
			result,
		))
	}

	s := result.Summary
	summary := &output.Section{
		Title: "Summary",
		Content: fmt.Sprintf(
			"%d dead exports, %d transitively dead, %d dead files, %d dead folders across %d files",
			s.DeadExports, s.TransitiveDead, s.DeadFiles, s.DeadFolders, s.FilesAnalyzed),
	}
	if verbose {
		summary.Sections = append(summary.Sections, output.Section{
			Title: "Marking",
			Content: fmt.Sprintf(
				"Symbols tracked: %d, passes: %d, mean chain: %.1f, p90 chain: %.1f",
				s.SymbolsTracked, s.Passes, s.MeanChainSize, s.P90ChainSize),
		})
		if s.UnusedImports > 0 || s.UnusedSymbols > 0 {
			summary.Sections = append(summary.Sections, output.Section{
				Title: "Supplementary Checks",
				Content: fmt.Sprintf(
					"Unused imports: %d, unused local symbols: %d",
					s.UnusedImports, s.UnusedSymbols),
			})
		}
	}
	report.Sections = append(report.Sections, summary)

	return formatter.Output(report)
}

// loadConfig loads the configured file or searches standard locations.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", cfgFile, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}

// getFormat resolves the output format from the flag, falling back to text.
func getFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	return "text"
}
