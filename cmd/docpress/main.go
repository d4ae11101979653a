package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docpress/docpress"
)

func main() {
	var (
		inputFile  string
		outputFile string
		kind       string
		locale     string
		verbose    bool
	)

	flag.StringVar(&inputFile, "input", "", "Input JSON record file path")
	flag.StringVar(&outputFile, "output", "", "Output PDF file path")
	flag.StringVar(&kind, "kind", string(docpress.KindFlatInvoice), "Document kind (flat-invoice, sectioned-invoice, quotation, bill-of-quantities, delivery-note, statement)")
	flag.StringVar(&locale, "locale", "en", "Formatting locale (BCP 47 tag)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if inputFile == "" {
		fmt.Println("Error: input file is required")
		flag.Usage()
		os.Exit(1)
	}

	if outputFile == "" {
		ext := filepath.Ext(inputFile)
		outputFile = inputFile[:len(inputFile)-len(ext)] + ".pdf"
	}

	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Printf("Error reading input file: %v\n", err)
		os.Exit(1)
	}

	var rec docpress.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		fmt.Printf("Error parsing input file: %v\n", err)
		os.Exit(1)
	}

	options := docpress.DefaultOptions()
	options.Locale = locale
	if verbose {
		options.Debug = true
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	engine := docpress.NewWithOptions(options)

	model, err := engine.Build(rec, docpress.Kind(kind))
	if err != nil {
		fmt.Printf("Error building document: %v\n", err)
		os.Exit(1)
	}

	if err := engine.RenderToFile(context.Background(), model, outputFile); err != nil {
		fmt.Printf("Error rendering document: %v\n", err)
		os.Exit(1)
	}

	if verbose {
		fmt.Printf("Successfully rendered %s to %s\n", inputFile, outputFile)
	}
}
