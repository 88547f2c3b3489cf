package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zen-systems/taxnav/pkg/adapter"
	"github.com/zen-systems/taxnav/pkg/classify"
	"github.com/zen-systems/taxnav/pkg/config"
	"github.com/zen-systems/taxnav/pkg/record"
	"github.com/zen-systems/taxnav/pkg/taxonomy"
)

var (
	configFile   string
	adapterFlag  string
	taxonomyFlag string
	verboseFlag  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taxnav",
		Short: "Classify product descriptions into a taxonomy using LLM oracles",
		Long: `Taxnav assigns free-text product descriptions to leaves of a product
	taxonomy through a progressive-narrowing sequence of LLM calls: the
	description is summarized, candidate top-level domains are selected,
	leaves are screened in numbered batches, and a final arbitration call
	picks the single best match.`,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ~/.taxnav/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&adapterFlag, "adapter", "", "override adapter (anthropic, openai, google, deepseek)")
	rootCmd.PersistentFlags().StringVar(&taxonomyFlag, "taxonomy", "", "override taxonomy file path")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(interactiveCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func classifyCmd() *cobra.Command {
	var jsonFlag bool
	var recordDir string
	var retries int
	var rateLimit time.Duration

	cmd := &cobra.Command{
		Use:   "classify [product description]",
		Short: "Classify a single product description",
		Long: `Runs the full classification pipeline on one product description
	and prints the chosen leaf path.

	Use --json to print the full result including the trace of every
	intermediate stage. Use --record to persist the result as a JSON
	record for later inspection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(retries, rateLimit)
			if err != nil {
				return err
			}
			defer env.close()

			result := env.pipeline.Classify(context.Background(), args[0])

			if recordDir != "" {
				w, err := record.NewWriter(recordDir)
				if err != nil {
					return err
				}
				if _, err := w.Write(args[0], result); err != nil {
					return fmt.Errorf("failed to record result: %w", err)
				}
			}

			return printResult(os.Stdout, result, jsonFlag)
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the full result as JSON")
	cmd.Flags().StringVar(&recordDir, "record", "", "directory to persist classification records")
	cmd.Flags().IntVar(&retries, "retries", 0, "retry transient oracle failures up to N attempts")
	cmd.Flags().DurationVar(&rateLimit, "rate-limit", 0, "minimum interval between oracle calls (e.g. 500ms)")

	return cmd
}

func batchCmd() *cobra.Command {
	var inputFile string
	var concurrency int
	var jsonFlag bool
	var recordDir string
	var retries int
	var rateLimit time.Duration

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Classify many product descriptions",
		Long: `Reads product descriptions, one per line, from --file or stdin and
	classifies each one. Results are printed in input order. Use
	--concurrency to classify several products in parallel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := readProducts(inputFile)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				return fmt.Errorf("no product descriptions to classify")
			}

			env, err := setup(retries, rateLimit)
			if err != nil {
				return err
			}
			defer env.close()

			var writer *record.Writer
			if recordDir != "" {
				writer, err = record.NewWriter(recordDir)
				if err != nil {
					return err
				}
			}

			if concurrency < 1 {
				concurrency = 1
			}

			results := make([]classify.Result, len(products))
			g, ctx := errgroup.WithContext(context.Background())
			g.SetLimit(concurrency)

			var mu sync.Mutex
			for i, product := range products {
				g.Go(func() error {
					results[i] = env.pipeline.Classify(ctx, product)
					if writer != nil {
						mu.Lock()
						_, err := writer.Write(product, results[i])
						mu.Unlock()
						if err != nil {
							return fmt.Errorf("failed to record result: %w", err)
						}
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, result := range results {
				if jsonFlag {
					if err := printResult(os.Stdout, result, true); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(os.Stdout, "%s\t%s\n", summaryLine(result), products[i])
			}

			if writer != nil {
				if err := writer.WriteStats(); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Records written to %s\n", writer.Dir())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "file with one product description per line (defaults to stdin)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "number of products to classify in parallel")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print full results as JSON lines")
	cmd.Flags().StringVar(&recordDir, "record", "", "directory to persist classification records")
	cmd.Flags().IntVar(&retries, "retries", 0, "retry transient oracle failures up to N attempts")
	cmd.Flags().DurationVar(&rateLimit, "rate-limit", 0, "minimum interval between oracle calls")

	return cmd
}

func interactiveCmd() *cobra.Command {
	var recordDir string
	var retries int
	var rateLimit time.Duration

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Classify products interactively",
		Long: `Reads product descriptions from stdin one at a time and prints the
	classification for each. Type "quit" or an empty line to exit.
	Session statistics are printed on exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(retries, rateLimit)
			if err != nil {
				return err
			}
			defer env.close()

			var writer *record.Writer
			if recordDir != "" {
				writer, err = record.NewWriter(recordDir)
				if err != nil {
					return err
				}
			}

			var total, successes int
			var calls int
			start := time.Now()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(os.Stderr, "product> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" || line == "quit" || line == "exit" {
					break
				}

				result := env.pipeline.Classify(context.Background(), line)
				total++
				calls += result.Calls
				if result.Success {
					successes++
				}
				if writer != nil {
					if _, err := writer.Write(line, result); err != nil {
						fmt.Fprintf(os.Stderr, "record failed: %v\n", err)
					}
				}
				fmt.Fprintln(os.Stdout, summaryLine(result))
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			if writer != nil {
				if err := writer.WriteStats(); err != nil {
					fmt.Fprintf(os.Stderr, "failed to write session stats: %v\n", err)
				}
			}
			fmt.Fprintf(os.Stderr, "\nSession: %d classified, %d succeeded, %d oracle calls, %s elapsed\n",
				total, successes, calls, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&recordDir, "record", "", "directory to persist classification records")
	cmd.Flags().IntVar(&retries, "retries", 0, "retry transient oracle failures up to N attempts")
	cmd.Flags().DurationVar(&rateLimit, "rate-limit", 0, "minimum interval between oracle calls")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [taxonomy-file]",
		Short: "Validate a taxonomy file and show its structure",
		Long:  "Parses the taxonomy file without classifying and prints per-domain leaf counts.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := taxonomyFlag
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Classify.TaxonomyFile
			}
			if path == "" {
				return fmt.Errorf("taxonomy file is required")
			}

			index, err := loadTaxonomy(path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DOMAIN\tLEAVES")
			for _, domain := range index.Domains() {
				fmt.Fprintf(w, "%s\t%d\n", domain, len(index.Leaves(domain)))
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "TOTAL\t%d leaves in %d domains\n", index.LeafCount(), len(index.Domains()))
			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available adapters and their models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")

			for _, provider := range []string{"anthropic", "openai", "google", "deepseek"} {
				status := "no key"
				if cfg.HasAdapter(provider) {
					status = "ready"
				}
				a, err := createAdapter(cfg, provider)
				models := ""
				if err == nil {
					models = strings.Join(a.Models(), ", ")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider, models, status)
			}

			return w.Flush()
		},
	}
}

// env bundles everything a classify command needs.
type env struct {
	pipeline *classify.Pipeline
	close    func()
}

func setup(retries int, rateLimit time.Duration) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	name := adapterFlag
	if name == "" {
		name = cfg.Classify.Adapter
	}
	oracle, err := createAdapter(cfg, name)
	if err != nil {
		return nil, err
	}
	if retries > 0 {
		oracle = adapter.NewRetryAdapter(oracle, retries, time.Second)
	}
	if rateLimit > 0 {
		oracle = adapter.NewRateLimitedAdapter(oracle, rateLimit)
	}

	taxonomyPath := taxonomyFlag
	if taxonomyPath == "" {
		taxonomyPath = cfg.Classify.TaxonomyFile
	}
	if taxonomyPath == "" {
		return nil, fmt.Errorf("taxonomy file is required (--taxonomy or classify.taxonomy_file in config)")
	}
	index, err := loadTaxonomy(taxonomyPath)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	opts := []classify.Option{classify.WithLogger(logger)}
	if cfg.Classify.SummaryModel != "" || cfg.Classify.SelectionModel != "" || cfg.Classify.ArbitrationModel != "" {
		opts = append(opts, classify.WithStageModels(
			cfg.Classify.SummaryModel,
			cfg.Classify.SelectionModel,
			cfg.Classify.ArbitrationModel,
		))
	}
	if cfg.Classify.BatchSize > 0 {
		opts = append(opts, classify.WithBatchSize(cfg.Classify.BatchSize))
	}
	if cfg.Classify.MaxPerBatch > 0 {
		opts = append(opts, classify.WithMaxPerBatch(cfg.Classify.MaxPerBatch))
	}
	if cfg.Classify.DomainCount > 0 {
		opts = append(opts, classify.WithDomainCount(cfg.Classify.DomainCount))
	}

	return &env{
		pipeline: classify.New(oracle, index, opts...),
		close:    func() { _ = logger.Sync() },
	}, nil
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadWithFile(configFile)
	}
	return config.Load()
}

func loadTaxonomy(path string) (*taxonomy.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
	}
	index, err := taxonomy.Build(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file %s: %w", path, err)
	}
	return index, nil
}

func createAdapter(cfg *config.Config, name string) (adapter.Adapter, error) {
	switch name {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
	case "google":
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is not set")
		}
		return adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
	case "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is not set")
		}
		return adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
	default:
		return nil, fmt.Errorf("unknown adapter %q", name)
	}
}

func newLogger() (*zap.Logger, error) {
	if verboseFlag {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func readProducts(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var products []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			products = append(products, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func printResult(w io.Writer, result classify.Result, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprintln(w, summaryLine(result))
	return err
}

func summaryLine(result classify.Result) string {
	if !result.Success {
		reason := result.Reason
		if reason == "" {
			reason = "no matching category"
		}
		return fmt.Sprintf("%s (%s)", classify.NoClassification, reason)
	}
	return result.FullPath
}
