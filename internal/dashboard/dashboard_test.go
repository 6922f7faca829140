package dashboard

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primer-ml/primer/internal/dataset/listings"
)

func TestOverviewPage_Render(t *testing.T) {
	d := listings.Sample(200)

	var buf bytes.Buffer
	require.NoError(t, overviewPage(d).Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Listings per neighbourhood group")
	assert.Contains(t, html, "Room type share")
	assert.Contains(t, html, "Average price per neighbourhood group")
}

func TestPricesPage_Render(t *testing.T) {
	d := listings.Sample(200)

	var buf bytes.Buffer
	require.NoError(t, pricesPage(d, 10).Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "Price distribution")
	assert.Contains(t, html, "neighbourhoods")
}

func TestMapPage_Render(t *testing.T) {
	d := listings.Sample(150)

	var buf bytes.Buffer
	require.NoError(t, mapPage(d).Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "Listings map")
	assert.Contains(t, html, "longitude")
	// One scatter series per room type present in the sample.
	types, _ := d.CountByRoomType()
	for _, roomType := range types {
		assert.Contains(t, html, roomType)
	}
}

func TestRenderTable(t *testing.T) {
	d := listings.Sample(50)

	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, d, 5))

	html := buf.String()
	assert.Contains(t, html, "<table>")
	assert.Equal(t, 6, strings.Count(html, "<tr>"), "header plus five rows")

	top := d.TopByReviews(5)
	assert.Contains(t, html, top[0].Name)
}

func TestWriteSite(t *testing.T) {
	d := listings.Sample(100)
	dir := t.TempDir()

	require.NoError(t, WriteSite(d, dir, 10))

	for _, file := range []string{"index.html", "overview.html", "prices.html", "map.html", "data.html"} {
		data, err := os.ReadFile(filepath.Join(dir, file))
		require.NoError(t, err, file)
		assert.NotEmpty(t, data, file)
	}

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	for _, tb := range tabs {
		assert.Contains(t, string(index), tb.File)
	}
}

func TestWriteSite_Empty(t *testing.T) {
	err := WriteSite(&listings.Dataset{}, t.TempDir(), 10)
	assert.Error(t, err)
}
