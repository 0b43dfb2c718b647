package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vizplan/internal/config"
	"vizplan/internal/database"
	"vizplan/internal/pipeline"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "vizplan",
	Short:   "Chart planning for tabular data",
	Long:    "Vizplan profiles a CSV or Excel file, scores its data quality, assigns chart roles, and generates a ranked set of chart specs with a manifest.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vizplan", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/vizplan/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure selection defaults and the LLM suggester.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		total, err := db.CountRuns()
		if err != nil {
			return fmt.Errorf("counting runs: %w", err)
		}

		fmt.Printf("Database: %s\n", db.Path())
		fmt.Printf("Recorded runs: %d\n", total)
		if total > 0 {
			runs, err := db.GetRecentRuns(1)
			if err != nil {
				return err
			}
			last := runs[0]
			fmt.Printf("Last run: #%d %s (%s, quality %s, %d charts)\n",
				last.ID, last.SourceFile, last.CreatedAt, last.QualityGrade, last.GeneratedCount)
		}
		return nil
	},
}

// --- analyze command ---

var (
	minScore    float64
	maxCharts   int
	outDir      string
	noSuggester bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv|file.xlsx>",
	Short: "Profile a dataset and generate a chart plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		out := outDir
		if out == "" {
			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			out = filepath.Join(cfg.GetDataDir(), "runs", base)
		}

		pipe := pipeline.New(cfg, db, noSuggester)
		result := pipe.Run(context.Background(), args[0], pipeline.Options{
			MinScore:  minScore,
			MaxCharts: maxCharts,
			OutDir:    out,
		})

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/6: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if last := result.Steps[len(result.Steps)-1]; last.Err != nil {
			return fmt.Errorf("pipeline failed: %w", last.Err)
		}

		fmt.Printf("\nManifest: %s\n", result.ManifestPath)
		fmt.Printf("Report:   %s\n", result.ReportPath)
		if result.RunID > 0 {
			fmt.Printf("Recorded as run #%d. Run 'vizplan runs show %d' for details.\n", result.RunID, result.RunID)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Float64Var(&minScore, "min-score", 0, "Override minimum chart score (default from config)")
	analyzeCmd.Flags().IntVar(&maxCharts, "max-charts", 0, "Override maximum chart count (default from config)")
	analyzeCmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default under the data dir)")
	analyzeCmd.Flags().BoolVar(&noSuggester, "no-suggester", false, "Skip the LLM suggester and use heuristics only")
}

// --- runs command ---

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List and inspect recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.GetRecentRuns(runsLimit)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet. Run 'vizplan analyze <file>' first.")
			return nil
		}

		for _, r := range runs {
			fmt.Printf("#%-4d %-30s %4d rows  quality %5.1f (%s)  plan %-8s %d generated, %d skipped  %s\n",
				r.ID, filepath.Base(r.SourceFile), r.RowCount, r.QualityScore, r.QualityGrade,
				r.PlanSource, r.GeneratedCount, r.SkippedCount, r.CreatedAt)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the stored manifest of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id: %s", args[0])
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(id)
		if err != nil {
			return fmt.Errorf("loading run: %w", err)
		}
		if run == nil {
			return fmt.Errorf("run #%d not found", id)
		}

		fmt.Println(run.Manifest)
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to list")
	runsCmd.AddCommand(runsShowCmd)
}

func openDB() (*database.DB, error) {
	dbPath := filepath.Join(cfg.GetDataDir(), "vizplan.db")
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
