package dashboard

import (
	"fmt"
	"html/template"
	"io"

	"github.com/primer-ml/primer/internal/dataset/listings"
)

var tableTmpl = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
th { background: #f5f5f5; }
tr:nth-child(even) { background: #fafafa; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<p>{{.Caption}}</p>
<table>
<tr><th>ID</th><th>Name</th><th>Group</th><th>Neighbourhood</th><th>Room type</th><th>Price</th><th>Min nights</th><th>Reviews</th><th>Availability</th></tr>
{{range .Rows}}<tr><td>{{.ID}}</td><td>{{.Name}}</td><td>{{.NeighbourhoodGroup}}</td><td>{{.Neighbourhood}}</td><td>{{.RoomType}}</td><td>{{printf "%.0f" .Price}}</td><td>{{.MinimumNights}}</td><td>{{.NumberOfReviews}}</td><td>{{.Availability365}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// renderTable writes the most-reviewed listings as an HTML table.
func renderTable(w io.Writer, d *listings.Dataset, topN int) error {
	rows := d.TopByReviews(topN)
	return tableTmpl.Execute(w, struct {
		Title   string
		Caption string
		Rows    []listings.Listing
	}{
		Title:   fmt.Sprintf("Top %d listings by review count", len(rows)),
		Caption: fmt.Sprintf("%d listings in the dataset, %d malformed rows skipped during load.", d.Len(), d.Skipped),
		Rows:    rows,
	})
}
