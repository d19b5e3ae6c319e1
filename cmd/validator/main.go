package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fluxo-app/fluxo-go/internal/config"
	"github.com/fluxo-app/fluxo-go/internal/observability"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ValidatorConfig holds configuration for the validator
type ValidatorConfig struct {
	APIURL         string
	Month          string
	OutputDir      string
	Verbose        bool
	ChecksToRun    []string
	RequestTimeout time.Duration
}

// ValidationResult represents the result of one contract check
type ValidationResult struct {
	Check    string        `json:"check"`
	Passed   bool          `json:"passed"`
	Detail   interface{}   `json:"detail,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ValidationReport represents the full validation report
type ValidationReport struct {
	Timestamp   time.Time          `json:"timestamp"`
	APIURL      string             `json:"api_url"`
	Month       string             `json:"month"`
	TotalTests  int                `json:"total_tests"`
	Passed      int                `json:"passed"`
	Failed      int                `json:"failed"`
	SuccessRate float64            `json:"success_rate"`
	Results     []ValidationResult `json:"results"`
}

// defaultChecks run when -checks is empty
var defaultChecks = []string{
	"categories",
	"payment_methods",
	"monthly",
	"recent_activity",
	"paginated",
	"dashboard",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	vcfg := parseFlags(cfg.APIURL)

	report, reportPath, err := validate(context.Background(), cfg, vcfg, logger)
	if err != nil {
		logger.Fatal("Validation could not run", zap.Error(err))
	}

	printSummary(report, reportPath)

	// Exit with non-zero if any check failed
	if report.Failed > 0 {
		os.Exit(1)
	}
}

// validate runs the checks against vcfg.APIURL and saves the report,
// returning it with the path it was written to
func validate(ctx context.Context, cfg *config.Config, vcfg *ValidatorConfig, logger *zap.Logger) (*ValidationReport, string, error) {
	if err := os.MkdirAll(vcfg.OutputDir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create output directory: %w", err)
	}

	opts := cfg.ClientOptions(observability.NewClientLogger(logger), nil)
	opts.BaseURL = vcfg.APIURL

	client, err := fluxo.NewClient(opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	window, err := fluxo.ParseMonth(vcfg.Month, client.Location())
	if err != nil {
		return nil, "", fmt.Errorf("invalid month: %w", err)
	}

	report := NewValidator(vcfg, client, window).Run(ctx)

	reportPath := filepath.Join(vcfg.OutputDir, fmt.Sprintf("validation_report_%d.json", time.Now().Unix()))
	if err := saveReport(report, reportPath); err != nil {
		return nil, "", fmt.Errorf("failed to save report: %w", err)
	}

	logger.Info("validation report saved",
		zap.String("path", reportPath),
		zap.Int("passed", report.Passed),
		zap.Int("failed", report.Failed),
	)
	return report, reportPath, nil
}

func parseFlags(defaultURL string) *ValidatorConfig {
	cfg := &ValidatorConfig{}

	flag.StringVar(&cfg.APIURL, "api", defaultURL, "Backend base URL")
	flag.StringVar(&cfg.Month, "month", time.Now().Format(fluxo.MonthLayout), "Month to validate (YYYY-MM)")
	flag.StringVar(&cfg.OutputDir, "output", "./validation_results", "Output directory for results")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", 30*time.Second, "Timeout per check")

	checkList := flag.String("checks", "", "Comma-separated list of checks to run (empty for all)")

	flag.Parse()

	if *checkList != "" {
		cfg.ChecksToRun = strings.Split(*checkList, ",")
	} else {
		cfg.ChecksToRun = defaultChecks
	}

	return cfg
}

// Validator checks that a backend honours the contract the client relies on
type Validator struct {
	config *ValidatorConfig
	client *fluxo.Client
	window fluxo.MonthWindow
}

// NewValidator creates a new validator
func NewValidator(cfg *ValidatorConfig, client *fluxo.Client, window fluxo.MonthWindow) *Validator {
	return &Validator{
		config: cfg,
		client: client,
		window: window,
	}
}

// Run executes the configured checks
func (v *Validator) Run(ctx context.Context) *ValidationReport {
	report := &ValidationReport{
		Timestamp: time.Now(),
		APIURL:    v.client.BaseURL(),
		Month:     v.window.Key(),
		Results:   make([]ValidationResult, 0, len(v.config.ChecksToRun)),
	}

	for _, check := range v.config.ChecksToRun {
		check = strings.TrimSpace(check)
		if v.config.Verbose {
			fmt.Printf("Checking %s...\n", check)
		}

		result := v.runCheck(ctx, check)
		report.Results = append(report.Results, result)

		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	report.TotalTests = len(report.Results)
	if report.TotalTests > 0 {
		report.SuccessRate = float64(report.Passed) / float64(report.TotalTests) * 100
	}

	return report
}

// runCheck runs a single check with its own timeout
func (v *Validator) runCheck(ctx context.Context, check string) ValidationResult {
	start := time.Now()
	result := ValidationResult{Check: check}

	timeout := v.config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	detail, err := v.executeCheck(ctx, check)
	result.Duration = time.Since(start)
	result.Detail = detail
	if err != nil {
		result.Error = err.Error()
		if v.config.Verbose {
			fmt.Printf("  %s failed: %v\n", check, err)
		}
		return result
	}

	result.Passed = true
	return result
}

// executeCheck calls the backend and verifies what came back
func (v *Validator) executeCheck(ctx context.Context, check string) (interface{}, error) {
	switch check {
	case "categories":
		categories, err := v.client.Categories.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range categories {
			if c.Type != "" && !c.Type.Valid() {
				return nil, fmt.Errorf("category %d has unknown type %q", c.ID, c.Type)
			}
		}
		return map[string]int{"count": len(categories)}, nil

	case "payment_methods":
		methods, err := v.client.PaymentMethods.List(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int{"count": len(methods)}, nil

	case "monthly":
		list, err := v.client.Transactions.Monthly(ctx, v.window)
		if err != nil {
			return nil, err
		}
		outside := 0
		for _, txn := range list.Transactions {
			if err := checkTransaction(txn); err != nil {
				return nil, err
			}
			if !txn.Date.IsZero() && !v.window.Contains(txn.Date.Time) {
				outside++
			}
		}
		return map[string]int{"count": len(list.Transactions), "outside_window": outside}, nil

	case "recent_activity":
		recent, err := v.client.Transactions.RecentActivity(ctx, v.window.From(), v.window.To(), fluxo.RecentActivityLimit)
		if err != nil {
			return nil, err
		}
		if len(recent) > fluxo.RecentActivityLimit {
			return nil, fmt.Errorf("asked for %d recent transactions, got %d", fluxo.RecentActivityLimit, len(recent))
		}
		return map[string]int{"count": len(recent)}, nil

	case "paginated":
		list, err := v.client.Transactions.Query().
			Between(v.window.FirstDay(), v.window.LastDay()).
			Limit(10).
			Execute(ctx)
		if err != nil {
			return nil, err
		}
		if len(list.Transactions) > 10 {
			return nil, fmt.Errorf("asked for 10 transactions, got %d", len(list.Transactions))
		}
		return list.Pagination, nil

	case "dashboard":
		dashboard, err := v.client.Dashboard(ctx, v.window)
		if err != nil {
			return nil, err
		}
		if err := checkSummary(dashboard.Summary, v.window); err != nil {
			return nil, err
		}
		return map[string]string{
			"income":  fluxo.FormatAmount(dashboard.Summary.TotalIncome),
			"expense": fluxo.FormatAmount(dashboard.Summary.TotalExpense),
			"net":     fluxo.FormatAmount(dashboard.Summary.Net),
		}, nil

	default:
		return nil, fmt.Errorf("unknown check: %s", check)
	}
}

// checkTransaction verifies the fields the aggregation depends on
func checkTransaction(txn *fluxo.Transaction) error {
	if !txn.Type.Valid() {
		return fmt.Errorf("transaction %d has unknown type %q", txn.ID, txn.Type)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("transaction %d has negative amount %s", txn.ID, txn.Amount)
	}
	return nil
}

// checkSummary verifies the aggregation invariants on live data
func checkSummary(s *fluxo.Summary, window fluxo.MonthWindow) error {
	if !s.TotalIncome.Sub(s.TotalExpense).Equal(s.Net) {
		return fmt.Errorf("net %s is not income %s minus expense %s", s.Net, s.TotalIncome, s.TotalExpense)
	}
	if len(s.CashSeries) != window.DaysInMonth() {
		return fmt.Errorf("cash series has %d days, month has %d", len(s.CashSeries), window.DaysInMonth())
	}
	for _, p := range s.CashSeries {
		if !p.Income.Sub(p.Expense).Equal(p.Net) {
			return fmt.Errorf("day %d net %s is not income minus expense", p.Day, p.Net)
		}
	}
	if sum := bucketSum(s.ExpensesByCategory); !sum.Equal(s.TotalExpense) {
		return fmt.Errorf("expense categories sum to %s, total is %s", sum, s.TotalExpense)
	}
	if sum := bucketSum(s.IncomeByCategory); !sum.Equal(s.TotalIncome) {
		return fmt.Errorf("income categories sum to %s, total is %s", sum, s.TotalIncome)
	}
	return nil
}

func bucketSum(buckets []fluxo.CategoryBucket) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range buckets {
		sum = sum.Add(b.Value)
	}
	return sum
}

func saveReport(report *ValidationReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printSummary(report *ValidationReport, path string) {
	fmt.Println("\n=== Validation Report ===")
	fmt.Printf("Backend: %s (%s)\n", report.APIURL, report.Month)
	fmt.Printf("Total Checks: %d\n", report.TotalTests)
	fmt.Printf("Passed: %d\n", report.Passed)
	fmt.Printf("Failed: %d\n", report.Failed)
	fmt.Printf("Success Rate: %.1f%%\n", report.SuccessRate)

	if report.Failed > 0 {
		fmt.Println("\nFailed Checks:")
		for _, result := range report.Results {
			if !result.Passed {
				fmt.Printf("  - %s: %s\n", result.Check, result.Error)
			}
		}
	}

	fmt.Printf("\nReport saved to: %s\n", path)
}
