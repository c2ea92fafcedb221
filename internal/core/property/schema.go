package property

import (
	"strings"

	"github.com/propdesk/propdesk/internal/core/validation"
)

type obj = map[string]interface{}

func nonEmpty() obj { return obj{"type": "string", "minLength": 1} }

func positive() obj { return obj{"type": "number", "exclusiveMinimum": 0} }

var imageURLsSchema = obj{
	"type":  "array",
	"items": obj{"type": "string", "format": "uri"},
}

// CreateSchema mirrors the checks of the create page.
var CreateSchema = obj{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"required": []interface{}{
		"title", "description", "property_type", "status", "price", "area",
		"address", "city", "district", "contact_name", "contact_phone", "images",
	},
	"properties": obj{
		"title":         nonEmpty(),
		"description":   nonEmpty(),
		"property_type": obj{"enum": optionValues(TypeOptions)},
		"status":        obj{"enum": optionValues(StatusOptions)},
		"price":         positive(),
		"area":          positive(),
		"bedrooms":      obj{"type": "integer", "minimum": 0},
		"bathrooms":     obj{"type": "integer", "minimum": 0},
		"floors":        obj{"type": "integer", "minimum": 0},
		"address":       nonEmpty(),
		"city":          nonEmpty(),
		"district":      nonEmpty(),
		"contact_name":  nonEmpty(),
		"contact_phone": nonEmpty(),
		"contact_email": obj{"anyOf": []interface{}{
			obj{"type": "string", "maxLength": 0},
			obj{"type": "string", "format": "email"},
		}},
		"images":    obj{"type": "array", "minItems": 1},
		"imageUrls": imageURLsSchema,
	},
}

// EditSchema mirrors the lighter checks of the edit page.
var EditSchema = obj{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"type":     "object",
	"required": []interface{}{"title", "price", "city", "status"},
	"properties": obj{
		"title":     nonEmpty(),
		"price":     positive(),
		"city":      nonEmpty(),
		"status":    obj{"enum": optionValues(StatusOptions)},
		"imageUrls": imageURLsSchema,
	},
}

var fieldMessages = map[string]string{
	"title":         "Title is required",
	"description":   "Description is required",
	"property_type": "Property type is invalid",
	"status":        "Status is required",
	"price":         "Price must be greater than 0",
	"area":          "Area must be greater than 0",
	"address":       "Address is required",
	"city":          "City is required",
	"district":      "District is required",
	"contact_name":  "Contact name is required",
	"contact_phone": "Contact phone is required",
	"contact_email": "Contact email is invalid",
	"images":        "At least one image is required",
	"imageUrls":     "Invalid URL format",
}

// humanize replaces schema wording with the messages shown next to fields,
// keeping one error per field.
func humanize(err error) error {
	ve := validation.GetValidationErrors(err)
	if ve == nil {
		return err
	}
	seen := map[string]bool{}
	out := &validation.ValidationErrors{}
	for _, e := range ve.Errors {
		if seen[e.Field] {
			continue
		}
		seen[e.Field] = true
		base, _, _ := strings.Cut(e.Field, ".")
		if msg, ok := fieldMessages[base]; ok {
			e.Message = msg
		}
		out.Errors = append(out.Errors, e)
	}
	return out
}
