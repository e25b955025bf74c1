// Command basis runs the cost basis engine over exchange exports on disk and prints the
// resulting reports, without a server or database.
//
//	basis --method lifo --prices prices.csv gemini.csv coinbase.csv
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/basis"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/database"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/formats"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/report"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/yahoo"
)

type flags struct {
	// Method is the pool method, FIFO or LIFO.
	Method string
	// Format forces a file format instead of detecting it per file.
	Format string
	// Prices is a symbol,date,open,high,low,close file used instead of the reference table.
	Prices string
	// DB is a server database whose stored prices are consulted after Prices.
	DB string
	// Live fetches prices missing everywhere else from Yahoo.
	Live bool
	// Cents rounds money to cents instead of whole dollars.
	Cents bool
	// CSV and Form8949 are output paths; empty skips the file.
	CSV      string
	Form8949 string
	// Quiet suppresses the text summary.
	Quiet    bool
	LogLevel string
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.Method, "method", "m", "FIFO", "Pool method (FIFO, LIFO)")
	flagSet.StringVarP(&f.Format, "format", "f", "", "File format, detected per file when empty ("+
		strings.Join(formats.DefaultRegistry().Names(), ", ")+")")
	flagSet.StringVar(&f.Prices, "prices", "", "CSV of daily prices: symbol,date,open,high,low,close")
	flagSet.StringVar(&f.DB, "db", "", "Server database to read stored prices from")
	flagSet.BoolVar(&f.Live, "live", false, "Fetch missing prices from Yahoo Finance")
	flagSet.BoolVar(&f.Cents, "cents", false, "Round money to cents instead of whole dollars")
	flagSet.StringVar(&f.CSV, "csv", "", "Write the reports as CSV to this path")
	flagSet.StringVar(&f.Form8949, "8949", "", "Write the reports in form 8949 layout to this path")
	flagSet.BoolVarP(&f.Quiet, "quiet", "q", false, "Do not print the text summary")
	flagSet.StringVar(&f.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

func main() {
	f := &flags{}
	flagSet := pflag.NewFlagSet("basis", pflag.ExitOnError)
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: basis [flags] FILE...\n\n")
		flagSet.PrintDefaults()
	}
	f.Bind(flagSet)
	_ = flagSet.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, f, flagSet.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "basis: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *flags, files []string, stdout io.Writer) error {
	if len(files) == 0 {
		return errors.New("no input files")
	}
	logger.Configure(logger.L, os.Stderr, f.LogLevel, "text")
	log := logger.L

	method, err := coinpool.ParseMethod(f.Method)
	if err != nil {
		return err
	}
	rounding := model.RoundDollars
	if f.Cents {
		rounding = model.RoundCents
	}

	txs, err := readFiles(files, f.Format)
	if err != nil {
		return err
	}

	oracle, closeOracle, err := buildOracle(ctx, f)
	if err != nil {
		return err
	}
	defer closeOracle()

	processor, err := basis.NewProcessor(method, oracle, basis.WithRounding(rounding), basis.WithLogger(log))
	if err != nil {
		return err
	}
	result, err := processor.Process(ctx, txs)
	if err != nil {
		return err
	}
	batch := result.Batch()

	if f.CSV != "" {
		if err := writeFile(f.CSV, batch, report.WriteCSV); err != nil {
			return err
		}
	}
	if f.Form8949 != "" {
		if err := writeFile(f.Form8949, batch, report.WriteForm8949CSV); err != nil {
			return err
		}
	}
	if f.Quiet {
		return nil
	}

	fmt.Fprintln(stdout, report.HumanReadable(batch))
	if len(result.Flags) > 0 {
		fmt.Fprintf(stdout, "\n%d flagged transactions:\n%s\n", len(result.Flags), report.Flags(result.Flags))
	}
	return nil
}

// readFiles parses every file and concatenates the transactions in file order.
func readFiles(files []string, format string) ([]*model.Transaction, error) {
	registry := formats.DefaultRegistry()
	var txs []*model.Transaction
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		parsed, err := registry.Parse(data, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		for _, t := range parsed.Transactions {
			if t.Source == "" {
				t.Source = parsed.Format
			}
		}
		txs = append(txs, parsed.Transactions...)
	}
	return txs, nil
}

// buildOracle chains the price file (or the reference table), the database and Yahoo in
// that order and caches the result.
func buildOracle(ctx context.Context, f *flags) (ohlc.Provider, func(), error) {
	closer := func() {}

	static := ohlc.ReferenceProvider()
	if f.Prices != "" {
		file, err := os.Open(f.Prices)
		if err != nil {
			return nil, closer, err
		}
		defer file.Close()
		static = ohlc.NewStaticProvider()
		if _, err := static.LoadCSV(file); err != nil {
			return nil, closer, fmt.Errorf("%s: %w", f.Prices, err)
		}
	}
	providers := []ohlc.Provider{static}

	if f.DB != "" {
		db, err := database.Open(ctx, f.DB, logger.L)
		if err != nil {
			return nil, closer, err
		}
		closer = func() { db.Close() }
		providers = append(providers, ohlc.NewStoreProvider(repository.NewPriceRepository(db)))
	}
	if f.Live {
		providers = append(providers, ohlc.NewYahooProvider(yahoo.NewFinanceClient()))
	}
	return ohlc.NewCachedProvider(ohlc.NewChainProvider(providers...), 0), closer, nil
}

func writeFile(path string, batch *model.ReportBatch, render func(io.Writer, *model.ReportBatch) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file, batch); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return file.Close()
}
