package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourusername/forecast-eval/internal/config"
	"github.com/yourusername/forecast-eval/internal/database"
	"github.com/yourusername/forecast-eval/internal/evaluation"
	"github.com/yourusername/forecast-eval/internal/models"
	"github.com/yourusername/forecast-eval/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile  string
	listLimit   int
	listDataset string
	rangeFrom   string
	rangeTo     string
	pruneDays   int

	appLog *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVar(&listLimit, "limit", 10, "Maximum number of reports to list")
	rootCmd.Flags().StringVar(&listDataset, "dataset", "", "Filter reports by dataset")
	listCmd.Flags().IntVar(&listLimit, "limit", 10, "Maximum number of reports to list")
	listCmd.Flags().StringVar(&listDataset, "dataset", "", "Filter reports by dataset")
	rangeCmd.Flags().StringVar(&rangeFrom, "from", "", "Start date, YYYY-MM-DD (inclusive)")
	rangeCmd.Flags().StringVar(&rangeTo, "to", "", "End date, YYYY-MM-DD (inclusive)")
	pruneCmd.Flags().IntVar(&pruneDays, "older-than", 90, "Delete reports older than this many days")
	rootCmd.AddCommand(listCmd, showCmd, rangeCmd, pruneCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "accuracy-history",
	Short: "Browse persisted forecast accuracy reports",
	Long:  `Lists and inspects evaluation reports persisted by the forecast evaluation pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close(context.Background())
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return listReports()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent evaluation reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listReports()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Display one report's accuracy tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid report id %q: %w", args[0], err)
		}
		return showReport(id)
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "List reports whose run date falls inside a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listReportsByRange()
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete reports older than the retention age",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pruneReports()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("accuracy-history %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("FORECAST_EVAL")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

func setupDependencies() error {
	appLog = logrus.New()
	appLog.SetLevel(logrus.WarnLevel)

	if !cfg.Database.Enabled {
		return fmt.Errorf("database is disabled in configuration; report history requires persistence")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func listReports() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		reports []*models.EvaluationReport
		err     error
	)
	if listDataset != "" {
		reports, err = repos.Report.GetByDataset(ctx, listDataset, listLimit)
	} else {
		reports, err = repos.Report.GetLatest(ctx, listLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch reports: %w", err)
	}

	fmt.Println("\n╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                Forecast Accuracy Report History                ║")
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	printReportTable(reports)
	return nil
}

func listReportsByRange() error {
	if rangeFrom == "" || rangeTo == "" {
		return fmt.Errorf("both --from and --to are required")
	}
	start, err := time.Parse("2006-01-02", rangeFrom)
	if err != nil {
		return fmt.Errorf("invalid --from date: %w", err)
	}
	end, err := time.Parse("2006-01-02", rangeTo)
	if err != nil {
		return fmt.Errorf("invalid --to date: %w", err)
	}
	// Make the end date inclusive of the whole day
	end = end.AddDate(0, 0, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reports, err := repos.Report.GetByDateRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to fetch reports: %w", err)
	}

	fmt.Println()
	printReportTable(reports)
	return nil
}

func showReport(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report, err := repos.Report.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("report %s not found", id)
		}
		return fmt.Errorf("failed to fetch report: %w", err)
	}

	fmt.Println("\n╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                    Forecast Accuracy Report                    ║")
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nID:          %s\n", report.ID)
	fmt.Printf("Run date:    %s\n", report.RunDate.Format(time.RFC3339))
	fmt.Printf("Dataset:     %s\n", report.Dataset)
	fmt.Printf("Granularity: %s\n", report.Granularity)
	fmt.Printf("Mode:        %s\n", describeMode(report))
	fmt.Printf("Metrics:     %s\n", strings.Join(report.Metrics, ", "))
	fmt.Printf("Rows scored: %d\n", report.RowCount)
	fmt.Printf("Groups:      %d\n", report.GroupCount)
	fmt.Printf("Config hash: %s\n", report.ConfigHash)

	var display evaluation.DisplayTable
	if err := json.Unmarshal(report.DisplayTable, &display); err != nil {
		return fmt.Errorf("failed to decode display table: %w", err)
	}
	fmt.Println()
	fmt.Println(evaluation.GenerateConsoleReport(&display))

	var summary map[string]float64
	if err := json.Unmarshal(report.Summary, &summary); err == nil && len(summary) > 0 {
		fmt.Println("Mean scores:")
		names := make([]string, 0, len(summary))
		for name := range summary {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-6s %g\n", name, summary[name])
		}
	}

	return nil
}

func pruneReports() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -pruneDays)
	deleted, err := repos.Report.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune reports: %w", err)
	}

	fmt.Printf("Deleted %d report(s) older than %s\n", deleted, cutoff.Format("2006-01-02"))
	return nil
}

func printReportTable(reports []*models.EvaluationReport) {
	if len(reports) == 0 {
		fmt.Println("No reports found.")
		return
	}

	fmt.Printf("%-36s  %-19s  %-24s  %-12s  %-5s  %6s\n", "ID", "RUN DATE", "DATASET", "GRANULARITY", "CV", "GROUPS")
	for _, report := range reports {
		dataset := report.Dataset
		if len(dataset) > 24 {
			dataset = dataset[:21] + "..."
		}
		fmt.Printf("%-36s  %-19s  %-24s  %-12s  %-5t  %6d\n",
			report.ID,
			report.RunDate.Format("2006-01-02 15:04:05"),
			dataset,
			report.Granularity,
			report.UseCV,
			report.GroupCount,
		)
	}
	fmt.Printf("\n%d report(s)\n", len(reports))
}

func describeMode(report *models.EvaluationReport) string {
	if report.UseCV {
		return "cross-validation"
	}
	if report.Aggregated {
		return "aggregate"
	}
	return "per-row"
}
