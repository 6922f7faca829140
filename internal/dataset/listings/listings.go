// Package listings loads Airbnb-style listing records and computes the
// aggregations the dashboard renders.
package listings

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// Listing is one accommodation record.
type Listing struct {
	ID                 int64
	Name               string
	NeighbourhoodGroup string
	Neighbourhood      string
	Latitude           float64
	Longitude          float64
	RoomType           string
	Price              float64
	MinimumNights      int
	NumberOfReviews    int
	Availability365    int
}

// Dataset holds the loaded listings plus load diagnostics.
type Dataset struct {
	Listings []Listing
	// Skipped counts rows dropped for missing or malformed fields.
	Skipped int
}

// Len returns the listing count.
func (d *Dataset) Len() int { return len(d.Listings) }

// columns maps the header names we need to their positions.
var requiredColumns = []string{
	"id", "name", "neighbourhood_group", "neighbourhood",
	"latitude", "longitude", "room_type", "price",
	"minimum_nights", "number_of_reviews", "availability_365",
}

// Load reads a listings CSV. The header row is required; column order is
// free. Rows with unparseable numeric fields are skipped and counted, not
// fatal.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("listings: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses listings CSV from a reader.
func Read(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // free-text name fields make row widths uneven

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("listings: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("listings: missing column %q", name)
		}
	}

	d := &Dataset{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listings: %w", err)
		}

		listing, ok := parseRow(record, cols)
		if !ok {
			d.Skipped++
			continue
		}
		d.Listings = append(d.Listings, listing)
	}

	if len(d.Listings) == 0 {
		return nil, fmt.Errorf("listings: no valid rows (%d skipped)", d.Skipped)
	}
	return d, nil
}

func parseRow(record []string, cols map[string]int) (Listing, bool) {
	field := func(name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	id, err := strconv.ParseInt(field("id"), 10, 64)
	if err != nil {
		return Listing{}, false
	}
	lat, err := strconv.ParseFloat(field("latitude"), 64)
	if err != nil {
		return Listing{}, false
	}
	lon, err := strconv.ParseFloat(field("longitude"), 64)
	if err != nil {
		return Listing{}, false
	}
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil || price < 0 {
		return Listing{}, false
	}

	// Remaining integers default to zero when blank.
	minNights, _ := strconv.Atoi(field("minimum_nights"))
	reviews, _ := strconv.Atoi(field("number_of_reviews"))
	availability, _ := strconv.Atoi(field("availability_365"))

	return Listing{
		ID:                 id,
		Name:               field("name"),
		NeighbourhoodGroup: field("neighbourhood_group"),
		Neighbourhood:      field("neighbourhood"),
		Latitude:           lat,
		Longitude:          lon,
		RoomType:           field("room_type"),
		Price:              price,
		MinimumNights:      minNights,
		NumberOfReviews:    reviews,
		Availability365:    availability,
	}, true
}

var sampleGroups = []string{"Manhattan", "Brooklyn", "Queens", "Bronx", "Staten Island"}

var sampleRoomTypes = []string{"Entire home/apt", "Private room", "Shared room"}

// Sample generates a deterministic in-memory dataset so the dashboard runs
// without a data file.
func Sample(n int) *Dataset {
	rng := rand.New(rand.NewSource(7))
	d := &Dataset{Listings: make([]Listing, n)}
	for i := range d.Listings {
		group := sampleGroups[rng.Intn(len(sampleGroups))]
		room := sampleRoomTypes[rng.Intn(len(sampleRoomTypes))]
		base := 40.0 + rng.Float64()*160
		if room == sampleRoomTypes[0] {
			base += 80
		}
		d.Listings[i] = Listing{
			ID:                 int64(1000 + i),
			Name:               fmt.Sprintf("%s stay #%d", group, i),
			NeighbourhoodGroup: group,
			Neighbourhood:      fmt.Sprintf("%s-%d", group, rng.Intn(6)),
			Latitude:           40.55 + rng.Float64()*0.35,
			Longitude:          -74.15 + rng.Float64()*0.45,
			RoomType:           room,
			Price:              float64(int(base)),
			MinimumNights:      1 + rng.Intn(14),
			NumberOfReviews:    rng.Intn(300),
			Availability365:    rng.Intn(366),
		}
	}
	return d
}
