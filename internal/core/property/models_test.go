package property

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProperty_DecodesMixedAPIShapes(t *testing.T) {
	raw := `{
		"id": 42,
		"title": "Căn hộ ven sông",
		"price": "3200.50",
		"area": 75,
		"city": "HCM",
		"images": [
			"uploads/a.jpg",
			{"id": 7, "image_path": "uploads/b.jpg", "is_primary": true, "sort_order": 1}
		],
		"contact": {"name": "Lan", "phone": "0900"}
	}`

	var p Property
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	require.Equal(t, ID("42"), p.ID)
	require.Equal(t, Number(3200.50), p.Price)
	require.Len(t, p.Images, 2)
	require.Equal(t, "uploads/a.jpg", p.Images[0].Path)
	require.True(t, p.Images[1].IsPrimary)
	require.Equal(t, "Lan", p.Contact.Name)
}

func TestProperty_PrimaryImageURL(t *testing.T) {
	p := Property{Images: []Image{{Path: "a.jpg"}, {Path: "/b.jpg", IsPrimary: true}}}
	require.Equal(t, "http://img.test/b.jpg", p.PrimaryImageURL("http://img.test/"))

	p.Images[1].IsPrimary = false
	require.Equal(t, "http://img.test/a.jpg", p.PrimaryImageURL("http://img.test"))

	require.Empty(t, (&Property{}).PrimaryImageURL("http://img.test"))
}

func TestProperty_ImageURLsKeepAbsoluteURLs(t *testing.T) {
	p := Property{Images: []Image{{Path: "https://cdn.test/x.jpg"}, {Path: "y.jpg"}, {Path: ""}}}
	require.Equal(t, []string{"https://cdn.test/x.jpg", "http://img.test/y.jpg"}, p.ImageURLs("http://img.test"))
}

func TestProperty_Location(t *testing.T) {
	require.Nil(t, (&Property{}).Location())

	lat, lon := 16.0544, 108.2022
	loc := (&Property{Latitude: &lat, Longitude: &lon}).Location()
	require.NotNil(t, loc)
	require.Len(t, loc.Geohash, 7)
	require.Equal(t, "w6ugq", loc.Geohash[:5])
}

func TestForm_FieldsSkipUnsetOptionals(t *testing.T) {
	f := NewForm()
	f.Title = "Villa"
	f.Price = 12000000000

	names := map[string]string{}
	for _, fl := range f.Fields() {
		names[fl.Name] = fl.Value
	}

	require.Equal(t, "Villa", names["title"])
	require.Equal(t, "12000000000", names["price"])
	require.Equal(t, "1", names["floors"])
	require.Equal(t, "[]", names["features"])
	_, hasLat := names["latitude"]
	require.False(t, hasLat)
}

func TestFormFromProperty(t *testing.T) {
	year := 2015
	p := &Property{
		Title:     "Nhà phố",
		Price:     6500,
		Status:    StatusSold,
		YearBuilt: &year,
		Contact:   Contact{Name: "An", Phone: "0123"},
	}

	f := FormFromProperty(p)
	require.Equal(t, "Nhà phố", f.Title)
	require.Equal(t, 6500.0, f.Price)
	require.Equal(t, StatusSold, f.Status)
	require.Equal(t, &year, f.YearBuilt)
	require.Equal(t, "An", f.ContactName)
	require.Equal(t, "[]", f.Features)
}

func TestOptions(t *testing.T) {
	require.True(t, ValidStatus(""))
	require.True(t, ValidStatus(StatusRented))
	require.False(t, ValidStatus("demolished"))
	require.True(t, ValidType(TypeLand))
	require.False(t, ValidType("castle"))
}
