// Command insight analyzes a local CSV or JSON file and prints the
// generated schema, visualizations and narrative without a running server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/query"
	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/utils"
)

func main() {
	var (
		filePath   = flag.String("file", "", "path to the CSV or JSON file to analyze")
		formatFlag = flag.String("format", "", "file format, csv or json (default: from extension)")
		question   = flag.String("question", "", "optional question to steer the narrative")
		category   = flag.String("category", "", "optional dataset category")
		configPath = flag.String("config", "", "optional analysis config YAML")
		asJSON     = flag.Bool("json", false, "emit the full analysis as JSON")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: insight -file data.csv [-question \"...\"]")
		os.Exit(2)
	}

	format, err := resolveFormat(*formatFlag, *filePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", *filePath, err)
		os.Exit(1)
	}

	cfg, err := analysis.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger := utils.GetLogger()
	logger.SetLevel(utils.WARN)

	engine := query.NewEngine(cfg, nil, nil, nil, logger)
	title := strings.TrimSuffix(filepath.Base(*filePath), filepath.Ext(*filePath))

	result, err := engine.AnalyzeRaw(context.Background(), string(raw), format, *category, title, *question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "encoding result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(title, result)
}

func resolveFormat(flagValue, path string) (tabular.Format, error) {
	name := flagValue
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch strings.ToLower(name) {
	case "csv":
		return tabular.FormatCSV, nil
	case "json":
		return tabular.FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q, use csv or json", name)
	}
}

func printReport(title string, result *query.RawAnalysis) {
	fmt.Printf("Dataset: %s\n", title)
	if result.Schema != nil {
		fmt.Printf("Entity type: %s, confidence %.2f\n", result.Schema.EntityType, result.Schema.Confidence)
		fmt.Printf("Fields: %d\n", len(result.Schema.Fields))
	}
	if result.Semantics != nil {
		fmt.Printf("Domain: %s\n", result.Semantics.DomainClassification)
		fmt.Printf("Quality: %.0f/100, completeness %.0f%%\n",
			result.Semantics.DataQualityScore, result.Semantics.CompletenessScore)
	}

	if len(result.Visualizations) > 0 {
		fmt.Println("\nVisualizations:")
		for _, viz := range result.Visualizations {
			fmt.Printf("  [%s] %s\n", viz.Type, viz.Title)
		}
	}

	if len(result.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, insight := range result.Insights {
			fmt.Printf("  - %s\n", insight)
		}
	}
}
