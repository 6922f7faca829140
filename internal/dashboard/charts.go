// Package dashboard renders listings analytics as a static multi-tab HTML
// site using Apache ECharts.
package dashboard

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/primer-ml/primer/internal/dataset/listings"
)

// groupCountBar charts listings per neighbourhood group.
func groupCountBar(d *listings.Dataset) *charts.Bar {
	groups, counts := d.CountByGroup()

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Listings per neighbourhood group",
			Subtitle: fmt.Sprintf("%d listings total", d.Len()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(groups).AddSeries("listings", data)
	return bar
}

// roomTypePie charts the room type share.
func roomTypePie(d *listings.Dataset) *charts.Pie {
	types, counts := d.CountByRoomType()

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Room type share"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.PieData, len(types))
	for i, name := range types {
		data[i] = opts.PieData{Name: name, Value: counts[i]}
	}
	pie.AddSeries("room types", data).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)
	return pie
}

// meanPriceBar charts the average price per neighbourhood group.
func meanPriceBar(d *listings.Dataset) *charts.Bar {
	groups, means := d.MeanPriceByGroup()

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Average price per neighbourhood group"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.BarData, len(means))
	for i, m := range means {
		data[i] = opts.BarData{Value: fmt.Sprintf("%.2f", m)}
	}
	bar.SetXAxis(groups).AddSeries("mean price", data)
	return bar
}

// priceHistogram charts the price distribution.
func priceHistogram(d *listings.Dataset, nbins int) *charts.Bar {
	bins := d.PriceHistogram(nbins)

	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, bin := range bins {
		labels[i] = bin.Label
		data[i] = opts.BarData{Value: bin.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Price distribution",
			Subtitle: fmt.Sprintf("correlation with review count: %.3f", d.PriceReviewsCorrelation()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45}}),
	)
	bar.SetXAxis(labels).AddSeries("listings", data)
	return bar
}

// topNeighbourhoodsBar charts the busiest neighbourhoods.
func topNeighbourhoodsBar(d *listings.Dataset, n int) *charts.Bar {
	names, counts := d.CountByNeighbourhood(n)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Top %d neighbourhoods", len(names))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(names).AddSeries("listings", data)
	return bar
}

// listingsMap plots every listing at its coordinates, one series per room
// type, symbol size scaled by price.
func listingsMap(d *listings.Dataset) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Listings map", Subtitle: "longitude / latitude, symbol size by price"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "{a}: {b}"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "longitude", Type: "value", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "latitude", Type: "value", Scale: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	byRoom := make(map[string][]opts.ScatterData)
	for _, l := range d.Listings {
		byRoom[l.RoomType] = append(byRoom[l.RoomType], opts.ScatterData{
			Name:       fmt.Sprintf("%s ($%.0f)", l.Name, l.Price),
			Value:      []any{l.Longitude, l.Latitude},
			SymbolSize: 4 + int(l.Price/50),
		})
	}

	types, _ := d.CountByRoomType()
	for _, roomType := range types {
		scatter.AddSeries(roomType, byRoom[roomType])
	}
	return scatter
}
