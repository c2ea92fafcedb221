package property

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// ID accepts both numeric and string ids from the API.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Image is an image descriptor as returned by the API. Older endpoints send
// bare path strings, newer ones send objects.
type Image struct {
	ID        int    `json:"id,omitempty"`
	Path      string `json:"image_path"`
	IsPrimary bool   `json:"is_primary"`
	SortOrder int    `json:"sort_order"`
}

func (img *Image) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &img.Path)
	}
	type plain Image
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*img = Image(p)
	return nil
}

// URL resolves a relative image path against base.
func (img Image) URL(base string) string {
	if base == "" || isAbsolute(img.Path) {
		return img.Path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(img.Path, "/")
}

func isAbsolute(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "//")
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Property is the read-only listing entity owned by the remote API.
type Property struct {
	ID           ID       `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PropertyType string   `json:"property_type"`
	Status       string   `json:"status"`
	Price        Number   `json:"price"`
	Area         Number   `json:"area"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Floors       int      `json:"floors"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	District     string   `json:"district"`
	PostalCode   string   `json:"postal_code,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	YearBuilt    *int     `json:"year_built,omitempty"`
	Features     string   `json:"features,omitempty"`
	Images       []Image  `json:"images"`
	Contact      Contact  `json:"contact"`
}

// ImageURLs lists the property's images, sorted as the API sent them,
// resolved against base.
func (p *Property) ImageURLs(base string) []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img.Path != "" {
			urls = append(urls, img.URL(base))
		}
	}
	return urls
}

// PrimaryImageURL prefers the image flagged primary, else the first one.
func (p *Property) PrimaryImageURL(base string) string {
	if len(p.Images) == 0 {
		return ""
	}
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL(base)
		}
	}
	return p.Images[0].URL(base)
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Geohash   string  `json:"geohash"`
}

// Location is nil unless both coordinates are known.
func (p *Property) Location() *Location {
	if p.Latitude == nil || p.Longitude == nil {
		return nil
	}
	return &Location{
		Latitude:  *p.Latitude,
		Longitude: *p.Longitude,
		Geohash:   geohash.EncodeWithPrecision(*p.Latitude, *p.Longitude, 7),
	}
}

// Number is a float that the API may send as a JSON string ("3200.00").
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Page is one page of listings plus the total match count.
type Page struct {
	Items []Property `json:"data"`
	Total int        `json:"total"`
}
