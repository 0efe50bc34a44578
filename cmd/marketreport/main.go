// Command marketreport fetches one page of the product source and prints its
// market report as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"clearfashion/internal/catalog"
	"clearfashion/internal/config"
	"clearfashion/internal/source"
	"clearfashion/pkg/retry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "marketreport:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	opts := catalog.DefaultReportOptions()

	fs := pflag.NewFlagSet("marketreport", pflag.ContinueOnError)
	page := fs.IntP("page", "p", 1, "page to fetch")
	size := fs.IntP("size", "s", 48, "products per page")
	baseURL := fs.String("url", cfg.SourceURL, "product source base url")
	fs.StringVar(&opts.NameContains, "contains", opts.NameContains, "name substring for the cheapest match")
	fs.Float64Var(&opts.RangeMin, "min", opts.RangeMin, "price range lower bound")
	fs.Float64Var(&opts.RangeMax, "max", opts.RangeMax, "price range upper bound")
	fs.Float64Var(&opts.ReasonableLimit, "limit", opts.ReasonableLimit, "reasonable shop price limit")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if *page < 1 || *size < 1 {
		return fmt.Errorf("page and size must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src := source.New(*baseURL,
		source.WithTimeout(cfg.FetchTimeout),
		source.WithRetry(cfg.FetchRetries, retry.Exponential(100*time.Millisecond)),
	)
	p, err := src.Fetch(ctx, *page, *size)
	if err != nil {
		return err
	}

	report := catalog.BuildReport(p.Products, time.Now(), opts)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Pagination catalog.Pagination `json:"pagination"`
		catalog.Report
	}{p.Pagination, report})
}
