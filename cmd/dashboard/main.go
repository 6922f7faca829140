// Command dashboard builds a static multi-tab HTML dashboard from an
// Airbnb-style listings CSV: summary charts, a price analysis, a coordinate
// map, and a data table. Without -data it renders a generated sample so the
// output can be previewed immediately.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/primer-ml/primer/internal/dashboard"
	"github.com/primer-ml/primer/internal/dataset/listings"
)

func main() {
	dataPath := flag.String("data", "", "listings CSV file (empty = generated sample)")
	outDir := flag.String("out", "./dashboard", "output directory for the HTML site")
	topN := flag.Int("top", 10, "rows in top-N charts and the data table")
	sampleSize := flag.Int("sample", 500, "size of the generated sample when -data is empty")
	flag.Parse()

	var data *listings.Dataset
	if *dataPath == "" {
		fmt.Printf("No -data given, rendering a generated sample of %d listings\n", *sampleSize)
		data = listings.Sample(*sampleSize)
	} else {
		var err error
		data, err = listings.Load(*dataPath)
		if err != nil {
			log.Fatalf("Failed to load listings: %v", err)
		}
		fmt.Printf("Loaded %d listings from %s", data.Len(), *dataPath)
		if data.Skipped > 0 {
			fmt.Printf(" (%d malformed rows skipped)", data.Skipped)
		}
		fmt.Println()
	}

	summary := data.PriceSummary()
	fmt.Printf("Price: mean %.2f, median %.2f, range [%.0f, %.0f]\n",
		summary.Mean, summary.Median, summary.Min, summary.Max)

	if err := dashboard.WriteSite(data, *outDir, *topN); err != nil {
		log.Fatalf("Failed to write dashboard: %v", err)
	}
	fmt.Printf("Dashboard written to %s (open index.html)\n", *outDir)
}
