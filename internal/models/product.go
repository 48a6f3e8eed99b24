// Package models defines the data structures flowing through the pipeline.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Raw field names recognized by the validator. Anything else in a RawRecord
// is ignored, never propagated.
const (
	FieldID        = "id"
	FieldTitle     = "title"
	FieldPrice     = "price"
	FieldCurrency  = "currency"
	FieldRating    = "rating"
	FieldImageURL  = "image_url"
	FieldCategory  = "category"
	FieldScrapedAt = "scraped_at"
)

// CurrencyUnknown is the sentinel used when no currency could be determined.
const CurrencyUnknown = "unknown"

// RawRecord is one unvalidated product as delivered by the extractor.
// An absent field is an absent key.
type RawRecord map[string]string

// Get returns the trimmed value for a field and whether it was present.
func (r RawRecord) Get(field string) (string, bool) {
	v, ok := r[field]
	if !ok {
		return "", false
	}

	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}

	return v, true
}

// ProductRecord is the canonical validated product entity.
type ProductRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Rating    *float64  `json:"rating,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Category  string    `json:"category,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Row returns the record serialized in canonical column order.
// Absent optional fields serialize as empty strings.
func (p *ProductRecord) Row() []string {
	rating := ""
	if p.Rating != nil {
		rating = strconv.FormatFloat(*p.Rating, 'f', -1, 64)
	}

	return []string{
		p.ID,
		p.Title,
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		p.Currency,
		rating,
		p.ImageURL,
		p.Category,
		p.ScrapedAt.UTC().Format(time.RFC3339),
	}
}

// Dataset is the ordered collection of validated products for one run.
// Insertion order matches extraction order. After the transformer hands it
// off, it is treated as read-only by every consumer.
type Dataset []ProductRecord

// Header is the fixed column order shared by the CSV file and the
// spreadsheet range.
func Header() []string {
	return []string{
		FieldID,
		FieldTitle,
		FieldPrice,
		FieldCurrency,
		FieldRating,
		FieldImageURL,
		FieldCategory,
		FieldScrapedAt,
	}
}

// Rows returns all records in canonical column order, without the header.
func (d Dataset) Rows() [][]string {
	rows := make([][]string, len(d))
	for i := range d {
		rows[i] = d[i].Row()
	}

	return rows
}

// Fingerprint returns a SHA-256 hex digest over the canonical serialization
// of the dataset. Two runs over the same input with the same clock produce
// the same fingerprint.
func (d Dataset) Fingerprint() string {
	h := sha256.New()

	for _, rec := range d {
		for _, cell := range rec.Row() {
			h.Write([]byte(cell))
			h.Write([]byte{0})
		}
		h.Write([]byte{'\n'})
	}

	return hex.EncodeToString(h.Sum(nil))
}
