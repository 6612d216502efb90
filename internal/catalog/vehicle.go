package catalog

import (
	"fmt"
	"strconv"

	"github.com/syntrixbase/showroom/internal/storage"
)

// Image is one photo of a vehicle.
type Image struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
	URL  string `json:"url"`
}

// Vehicle is one catalog listing. Images[0] is the primary image.
type Vehicle struct {
	ID    string `json:"id"`
	Year  string `json:"year"`
	Name  string `json:"name"`
	Price any    `json:"price"`
	UID   string `json:"uid"`
	City  string `json:"city"`
	KM    string `json:"km"`

	Images []Image `json:"images"`

	// Created is the server-assigned creation time in Unix milliseconds.
	Created int64 `json:"created"`
}

// PrimaryImage returns the URL of the first image, or "" when there is none.
func (v Vehicle) PrimaryImage() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0].URL
}

// vehicleFromDoc maps a stored document field-for-field. Missing fields stay zero.
func vehicleFromDoc(doc *storage.StoredDoc) Vehicle {
	data := doc.Data
	return Vehicle{
		ID:      doc.DocID(),
		Year:    stringField(data["year"]),
		Name:    stringField(data["name"]),
		Price:   data["price"],
		UID:     stringField(data["uid"]),
		City:    stringField(data["city"]),
		KM:      stringField(data["km"]),
		Images:  imagesField(data["images"]),
		Created: doc.CreatedAt,
	}
}

func imagesField(v any) []Image {
	var raw []interface{}
	switch list := v.(type) {
	case []interface{}:
		raw = list
	case []map[string]interface{}:
		for _, m := range list {
			raw = append(raw, m)
		}
	default:
		return []Image{}
	}
	images := make([]Image, 0, len(raw))
	for _, item := range raw {
		m, _ := item.(map[string]interface{})
		images = append(images, Image{
			Name: stringField(m["name"]),
			UID:  stringField(m["uid"]),
			URL:  stringField(m["url"]),
		})
	}
	return images
}

// stringField renders scalar document values as strings. Documents written by
// different clients store year and km both as strings and as numbers.
func stringField(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
