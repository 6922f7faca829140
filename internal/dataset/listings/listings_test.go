package listings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,name,neighbourhood_group,neighbourhood,latitude,longitude,room_type,price,minimum_nights,number_of_reviews,availability_365
1,Cozy loft,Brooklyn,Williamsburg,40.71,-73.95,Entire home/apt,150,2,120,300
2,Sunny room,Manhattan,Harlem,40.81,-73.94,Private room,60,1,45,200
3,Shared spot,Brooklyn,Bushwick,40.69,-73.92,Shared room,30,1,10,365
4,Broken row,Brooklyn,Bushwick,not-a-number,-73.92,Private room,50,1,5,100
5,Free?,Manhattan,Chelsea,40.74,-74.00,Entire home/apt,-10,1,2,50
`

// TestRead_SkipsMalformedRows checks rows 4 and 5 are dropped, not fatal.
func TestRead_SkipsMalformedRows(t *testing.T) {
	d, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 2, d.Skipped)
	assert.Equal(t, "Cozy loft", d.Listings[0].Name)
	assert.Equal(t, 150.0, d.Listings[0].Price)
	assert.Equal(t, 120, d.Listings[0].NumberOfReviews)
}

// TestRead_MissingColumn checks header validation.
func TestRead_MissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("id,name\n1,x\n"))
	assert.ErrorContains(t, err, "missing column")
}

// TestRead_AllRowsBad checks the empty-result error.
func TestRead_AllRowsBad(t *testing.T) {
	header := sampleCSV[:strings.Index(sampleCSV, "\n")+1]
	_, err := Read(strings.NewReader(header + "x,y,z,w,a,b,c,d,e,f,g\n"))
	assert.ErrorContains(t, err, "no valid rows")
}

// TestPriceSummary checks the quantile summary on known values.
func TestPriceSummary(t *testing.T) {
	d, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	s := d.PriceSummary()
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 80.0, s.Mean, 1e-9) // (150+60+30)/3
	assert.Equal(t, 30.0, s.Min)
	assert.Equal(t, 150.0, s.Max)
	assert.InDelta(t, 60.0, s.Median, 1e-9)
}

// TestCountByGroup checks descending order with name tiebreak.
func TestCountByGroup(t *testing.T) {
	d, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	groups, counts := d.CountByGroup()
	assert.Equal(t, []string{"Brooklyn", "Manhattan"}, groups)
	assert.Equal(t, []int{2, 1}, counts)
}

// TestMeanPriceByGroup checks per-group averaging.
func TestMeanPriceByGroup(t *testing.T) {
	d, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	groups, means := d.MeanPriceByGroup()
	require.Equal(t, []string{"Brooklyn", "Manhattan"}, groups)
	assert.InDelta(t, 90.0, means[0], 1e-9) // (150+30)/2
	assert.InDelta(t, 60.0, means[1], 1e-9)
}

// TestPriceHistogram checks bin counts cover every listing.
func TestPriceHistogram(t *testing.T) {
	d := Sample(200)

	bins := d.PriceHistogram(10)
	require.Len(t, bins, 10)

	total := 0
	for _, bin := range bins {
		assert.NotEmpty(t, bin.Label)
		total += bin.Count
	}
	assert.Equal(t, 200, total)
}

// TestTopByReviews checks ordering and truncation.
func TestTopByReviews(t *testing.T) {
	d, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	top := d.TopByReviews(2)
	require.Len(t, top, 2)
	assert.Equal(t, 120, top[0].NumberOfReviews)
	assert.Equal(t, 45, top[1].NumberOfReviews)
}

// TestPriceReviewsCorrelation stays within [-1, 1].
func TestPriceReviewsCorrelation(t *testing.T) {
	d := Sample(100)
	r := d.PriceReviewsCorrelation()
	assert.GreaterOrEqual(t, r, -1.0)
	assert.LessOrEqual(t, r, 1.0)
}

// TestSample is deterministic.
func TestSample(t *testing.T) {
	a := Sample(30)
	b := Sample(30)
	assert.Equal(t, a.Listings, b.Listings)
	assert.Equal(t, 30, a.Len())
}
