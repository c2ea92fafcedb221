package property

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Form carries the scalar fields of the create and edit pages.
type Form struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PropertyType string   `json:"property_type"`
	Status       string   `json:"status"`
	Price        float64  `json:"price"`
	Area         float64  `json:"area"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Floors       int      `json:"floors"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	District     string   `json:"district"`
	PostalCode   string   `json:"postal_code"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	YearBuilt    *int     `json:"year_built,omitempty"`
	Features     string   `json:"features"`
	ContactName  string   `json:"contact_name"`
	ContactPhone string   `json:"contact_phone"`
	ContactEmail string   `json:"contact_email"`
}

// NewForm returns the blank create form.
func NewForm() Form {
	return Form{
		PropertyType: TypeApartment,
		Status:       StatusAvailable,
		Floors:       1,
		Features:     "[]",
	}
}

// FormFromProperty pre-fills the edit form.
func FormFromProperty(p *Property) Form {
	f := Form{
		Title:        p.Title,
		Description:  p.Description,
		PropertyType: p.PropertyType,
		Status:       p.Status,
		Price:        float64(p.Price),
		Area:         float64(p.Area),
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Floors:       p.Floors,
		Address:      p.Address,
		City:         p.City,
		District:     p.District,
		PostalCode:   p.PostalCode,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		YearBuilt:    p.YearBuilt,
		Features:     p.Features,
		ContactName:  p.Contact.Name,
		ContactPhone: p.Contact.Phone,
		ContactEmail: p.Contact.Email,
	}
	if f.Features == "" {
		f.Features = "[]"
	}
	return f
}

type Field struct {
	Name  string
	Value string
}

// Fields flattens the form into multipart scalar fields. Unset optional
// numbers are left out.
func (f Form) Fields() []Field {
	fields := []Field{
		{"title", f.Title},
		{"description", f.Description},
		{"property_type", f.PropertyType},
		{"status", f.Status},
		{"price", formatFloat(f.Price)},
		{"area", formatFloat(f.Area)},
		{"bedrooms", strconv.Itoa(f.Bedrooms)},
		{"bathrooms", strconv.Itoa(f.Bathrooms)},
		{"floors", strconv.Itoa(f.Floors)},
		{"address", f.Address},
		{"city", f.City},
		{"district", f.District},
		{"postal_code", f.PostalCode},
	}
	if f.Latitude != nil {
		fields = append(fields, Field{"latitude", formatFloat(*f.Latitude)})
	}
	if f.Longitude != nil {
		fields = append(fields, Field{"longitude", formatFloat(*f.Longitude)})
	}
	if f.YearBuilt != nil {
		fields = append(fields, Field{"year_built", strconv.Itoa(*f.YearBuilt)})
	}
	return append(fields,
		Field{"features", f.Features},
		Field{"contact_name", f.ContactName},
		Field{"contact_phone", f.ContactPhone},
		Field{"contact_email", f.ContactEmail},
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// document is what the form schemas validate: the scalar fields plus the
// visible image list and the URLs that will be retained.
func (f Form) document(images []string, retainedURLs []string) (map[string]interface{}, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range doc {
		if s, ok := v.(string); ok {
			doc[k] = strings.TrimSpace(s)
		}
	}
	doc["images"] = images
	doc["imageUrls"] = retainedURLs
	return doc, nil
}
