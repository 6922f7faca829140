package listings

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary describes one numeric column.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	Q1     float64
	Q3     float64
}

// summarize computes a Summary over values. Empty input yields zeros.
func summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return Summary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
}

// PriceSummary summarizes the price column.
func (d *Dataset) PriceSummary() Summary {
	prices := make([]float64, d.Len())
	for i, l := range d.Listings {
		prices[i] = l.Price
	}
	return summarize(prices)
}

// CountByGroup counts listings per neighbourhood group, sorted descending.
func (d *Dataset) CountByGroup() ([]string, []int) {
	return d.countBy(func(l Listing) string { return l.NeighbourhoodGroup })
}

// CountByRoomType counts listings per room type, sorted descending.
func (d *Dataset) CountByRoomType() ([]string, []int) {
	return d.countBy(func(l Listing) string { return l.RoomType })
}

// CountByNeighbourhood counts listings per neighbourhood, sorted
// descending, truncated to the top n.
func (d *Dataset) CountByNeighbourhood(n int) ([]string, []int) {
	keys, counts := d.countBy(func(l Listing) string { return l.Neighbourhood })
	if n > 0 && len(keys) > n {
		keys, counts = keys[:n], counts[:n]
	}
	return keys, counts
}

func (d *Dataset) countBy(key func(Listing) string) ([]string, []int) {
	counts := make(map[string]int)
	for _, l := range d.Listings {
		counts[key(l)]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = counts[k]
	}
	return keys, out
}

// MeanPriceByGroup averages price per neighbourhood group, in the order
// returned by CountByGroup.
func (d *Dataset) MeanPriceByGroup() ([]string, []float64) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, l := range d.Listings {
		sums[l.NeighbourhoodGroup] += l.Price
		counts[l.NeighbourhoodGroup]++
	}

	groups, _ := d.CountByGroup()
	means := make([]float64, len(groups))
	for i, g := range groups {
		means[i] = sums[g] / float64(counts[g])
	}
	return groups, means
}

// HistogramBin is one bar of a value histogram.
type HistogramBin struct {
	Label string
	Count int
}

// PriceHistogram buckets prices into nbins equal-width bins between the
// observed minimum and maximum.
func (d *Dataset) PriceHistogram(nbins int) []HistogramBin {
	if d.Len() == 0 || nbins <= 0 {
		return nil
	}

	minPrice, maxPrice := math.Inf(1), math.Inf(-1)
	for _, l := range d.Listings {
		minPrice = math.Min(minPrice, l.Price)
		maxPrice = math.Max(maxPrice, l.Price)
	}

	width := (maxPrice - minPrice) / float64(nbins)
	if width == 0 {
		return []HistogramBin{{Label: fmt.Sprintf("%.0f", minPrice), Count: d.Len()}}
	}

	bins := make([]HistogramBin, nbins)
	for i := range bins {
		lo := minPrice + float64(i)*width
		bins[i].Label = fmt.Sprintf("%.0f–%.0f", lo, lo+width)
	}
	for _, l := range d.Listings {
		idx := int((l.Price - minPrice) / width)
		if idx >= nbins {
			idx = nbins - 1
		}
		bins[idx].Count++
	}
	return bins
}

// PriceReviewsCorrelation returns the Pearson correlation between price and
// review count.
func (d *Dataset) PriceReviewsCorrelation() float64 {
	if d.Len() < 2 {
		return 0
	}
	prices := make([]float64, d.Len())
	reviews := make([]float64, d.Len())
	for i, l := range d.Listings {
		prices[i] = l.Price
		reviews[i] = float64(l.NumberOfReviews)
	}
	return stat.Correlation(prices, reviews, nil)
}

// TopByReviews returns the n most-reviewed listings.
func (d *Dataset) TopByReviews(n int) []Listing {
	sorted := append([]Listing(nil), d.Listings...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].NumberOfReviews != sorted[j].NumberOfReviews {
			return sorted[i].NumberOfReviews > sorted[j].NumberOfReviews
		}
		return sorted[i].ID < sorted[j].ID
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
