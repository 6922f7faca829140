package dashboard

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/primer-ml/primer/internal/dataset/listings"
)

// HistogramBins is the number of equal-width price buckets on the Prices tab.
const HistogramBins = 20

type tab struct {
	Title string
	File  string
}

var tabs = []tab{
	{"Overview", "overview.html"},
	{"Prices", "prices.html"},
	{"Map", "map.html"},
	{"Data", "data.html"},
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Listings dashboard</title>
<style>
body { font-family: sans-serif; margin: 0; }
nav { background: #2c343c; padding: 0 16px; }
nav a { display: inline-block; color: #cfd6dd; padding: 12px 16px; text-decoration: none; }
nav a.active { color: #fff; border-bottom: 3px solid #5470c6; }
iframe { border: none; width: 100%; height: calc(100vh - 48px); }
</style>
<script>
function show(file, link) {
  document.getElementById("content").src = file;
  for (const a of document.querySelectorAll("nav a")) a.classList.remove("active");
  link.classList.add("active");
}
</script>
</head>
<body>
<nav>
{{range $i, $t := .}}<a href="#" {{if eq $i 0}}class="active" {{end}}onclick="show('{{$t.File}}', this); return false">{{$t.Title}}</a>
{{end}}</nav>
<iframe id="content" src="{{(index . 0).File}}"></iframe>
</body>
</html>
`))

// overviewPage bundles the headline charts.
func overviewPage(d *listings.Dataset) *components.Page {
	page := components.NewPage()
	page.PageTitle = "Overview"
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(groupCountBar(d), roomTypePie(d), meanPriceBar(d))
	return page
}

// pricesPage bundles the price analysis charts.
func pricesPage(d *listings.Dataset, topN int) *components.Page {
	page := components.NewPage()
	page.PageTitle = "Prices"
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(priceHistogram(d, HistogramBins), topNeighbourhoodsBar(d, topN))
	return page
}

// mapPage holds the coordinate scatter.
func mapPage(d *listings.Dataset) *components.Page {
	page := components.NewPage()
	page.PageTitle = "Map"
	page.SetLayout(components.PageCenterLayout)
	page.AddCharts(listingsMap(d))
	return page
}

// WriteSite renders the full dashboard into outDir: an index page with a tab
// bar plus one HTML file per tab.
func WriteSite(d *listings.Dataset, outDir string, topN int) error {
	if d.Len() == 0 {
		return fmt.Errorf("dashboard: no listings to render")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("dashboard: create output dir: %w", err)
	}

	pages := map[string]*components.Page{
		"overview.html": overviewPage(d),
		"prices.html":   pricesPage(d, topN),
		"map.html":      mapPage(d),
	}
	for file, page := range pages {
		if err := writePage(filepath.Join(outDir, file), page); err != nil {
			return err
		}
	}

	f, err := os.Create(filepath.Join(outDir, "data.html"))
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	if err := renderTable(f, d, topN); err != nil {
		f.Close()
		return fmt.Errorf("dashboard: render table: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	f, err = os.Create(filepath.Join(outDir, "index.html"))
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	if err := indexTmpl.Execute(f, tabs); err != nil {
		f.Close()
		return fmt.Errorf("dashboard: render index: %w", err)
	}
	return f.Close()
}

func writePage(path string, page *components.Page) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("dashboard: render %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
