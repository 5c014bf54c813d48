// Command swap loads live token prices and prints a swap quote.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"currency-swap/internal/config"
	"currency-swap/internal/format"
	"currency-swap/internal/logging"
	"currency-swap/internal/pricefeed"
	"currency-swap/internal/session"
	"currency-swap/internal/submission"
)

// tokenPriceDigits keeps sub-cent prices visible in the token list.
const tokenPriceDigits = 4

// cliOptions are the parsed command-line flags.
type cliOptions struct {
	configPath string
	feedURL    string
	from       string
	to         string
	amount     string
	swap       bool
	confirm    bool
	list       bool
	search     string
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&opts.feedURL, "feed-url", "", "Price feed URL (overrides config and SWAP_FEED_URL)")
	flag.StringVar(&opts.from, "from", "", "Token to pay with (default: first token in the catalog)")
	flag.StringVar(&opts.to, "to", "", "Token to receive (default: second token in the catalog)")
	flag.StringVar(&opts.amount, "amount", "", "Amount to pay (default from config)")
	flag.BoolVar(&opts.swap, "swap", false, "Exchange the pay and receive tokens before quoting")
	flag.BoolVar(&opts.confirm, "confirm", false, "Submit the swap after quoting")
	flag.BoolVar(&opts.list, "list", false, "List available tokens and exit")
	flag.StringVar(&opts.search, "search", "", "List tokens whose symbol contains this text and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts cliOptions, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.feedURL != "" {
		cfg.Feed.URL = opts.feedURL
	}
	if opts.amount != "" {
		cfg.Form.DefaultAmount = opts.amount
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	form := newForm(cfg, logger)
	defer form.Close()

	if err := form.Init(ctx); err != nil {
		fmt.Fprintln(out, pricefeed.ErrorMessage)
		return err
	}

	if opts.list || opts.search != "" {
		printTokens(out, form, opts.search)
		return nil
	}

	if opts.from != "" {
		if err := form.SetFrom(opts.from); err != nil {
			return err
		}
	}
	if opts.to != "" {
		if err := form.SetTo(opts.to); err != nil {
			return err
		}
	}
	if opts.swap {
		form.SwapPair()
	}

	view := form.Snapshot()
	printQuote(out, view)

	if !opts.confirm {
		return nil
	}
	if !view.CanSubmit() {
		return errors.New("swap cannot be submitted")
	}

	fmt.Fprintln(out, "Submitting...")
	if _, err := form.Submit(ctx); err != nil {
		if msg := form.Snapshot().Message; msg != nil {
			fmt.Fprintln(out, msg.Text)
		}
		return err
	}
	fmt.Fprintln(out, form.Snapshot().Message.Text)
	return nil
}

func newForm(cfg *config.Config, logger *zap.Logger) *session.Form {
	client := pricefeed.NewHTTPClient(cfg.Feed.URL,
		pricefeed.WithTimeout(cfg.Feed.Timeout.Std()),
		pricefeed.WithMaxRetries(cfg.Feed.MaxRetries),
		pricefeed.WithRetryDelay(cfg.Feed.RetryDelay.Std()),
		pricefeed.WithUserAgent(cfg.Feed.UserAgent),
	)

	return session.New(session.Options{
		Source:        client,
		Executor:      submission.NewSimulatedExecutor(submission.WithLatency(cfg.Submission.Latency.Std())),
		Logger:        logger,
		DefaultAmount: cfg.Form.DefaultAmount,
	})
}

func printTokens(out io.Writer, form *session.Form, query string) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tPRICE (USD)")
	for _, t := range form.Tokens(query) {
		fmt.Fprintf(tw, "%s\t$%s\n", t.Symbol, format.Number(t.Price, tokenPriceDigits))
	}
	_ = tw.Flush()
}

func printQuote(out io.Writer, v session.View) {
	from, to := format.Placeholder, format.Placeholder
	if v.From != nil {
		from = *v.From
	}
	if v.To != nil {
		to = *v.To
	}

	converted := format.Placeholder
	if v.ConvertedAmount != "" {
		converted = v.ConvertedAmount
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Prices:\t%s (updated %s, %d tokens)\n", v.Feed.Status, v.Feed.LastUpdated, v.Feed.Tokens)
	fmt.Fprintf(tw, "You pay:\t%s %s\t%s\n", v.Amount, from, v.USDFromHint)
	fmt.Fprintf(tw, "You receive:\t%s %s\t%s\n", converted, to, v.USDToHint)
	fmt.Fprintf(tw, "Rate:\t%s\n", v.RateLine)
	_ = tw.Flush()

	for _, hint := range v.Validation.Hints {
		fmt.Fprintf(out, "! %s\n", hint)
	}
}
