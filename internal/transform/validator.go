// Package transform normalizes raw scraped records into the canonical
// product schema.
package transform

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fashionetl/internal/models"
)

// Fatal validation errors. A record failing one of these is excluded from
// the dataset.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidPrice         = errors.New("invalid price")
)

// Issue records a non-fatal correction applied during validation.
type Issue struct {
	Field  string
	Detail string
}

// placeholderTitles are title values the catalog emits for products it could
// not resolve. They are treated the same as a missing title.
var placeholderTitles = map[string]bool{
	"unknown product": true,
	"unknown":         true,
}

// currencySymbols maps a price prefix/suffix symbol to its ISO 4217 code.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"US$", "USD"},
	{"$", "USD"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"Rp", "IDR"},
}

// Validator applies the canonical schema rules to a single raw record.
// It is pure over its input plus the injected clock.
type Validator struct {
	now           func() time.Time
	numberPattern *regexp.Regexp
	codePattern   *regexp.Regexp
}

// NewValidator creates a validator using the wall clock.
func NewValidator() *Validator {
	return NewValidatorWithClock(time.Now)
}

// NewValidatorWithClock creates a validator with an injected clock, so tests
// can pin scraped_at stamping.
func NewValidatorWithClock(now func() time.Time) *Validator {
	return &Validator{
		now:           now,
		numberPattern: regexp.MustCompile(`-?\d+(?:\.\d+)?`),
		codePattern:   regexp.MustCompile(`^[A-Z]{3}$`),
	}
}

// Validate checks a raw record against the schema rules, applying non-fatal
// corrections in place. Rules are applied in order and short-circuit on the
// first fatal failure. The returned issues list carries every correction
// applied; a non-nil error means the record must be dropped.
func (v *Validator) Validate(raw models.RawRecord) (*models.ProductRecord, []Issue, error) {
	var issues []Issue

	id, ok := raw.Get(models.FieldID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, models.FieldID)
	}

	title, ok := raw.Get(models.FieldTitle)
	if !ok || placeholderTitles[strings.ToLower(title)] {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, models.FieldTitle)
	}

	rawPrice, ok := raw.Get(models.FieldPrice)
	if !ok {
		return nil, nil, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}

	price, symbolCurrency, err := v.parsePrice(rawPrice)
	if err != nil {
		return nil, nil, err
	}

	rec := &models.ProductRecord{
		ID:    id,
		Title: title,
		Price: price,
	}

	rec.Currency, issues = v.resolveCurrency(raw, symbolCurrency, issues)

	if rawRating, present := raw.Get(models.FieldRating); present {
		rating, parseOK := v.parseRating(rawRating)
		if parseOK {
			rec.Rating = &rating
		} else {
			issues = append(issues, Issue{
				Field:  models.FieldRating,
				Detail: fmt.Sprintf("dropped unusable rating %q", rawRating),
			})
		}
	}

	rec.ImageURL, _ = raw.Get(models.FieldImageURL)
	rec.Category, _ = raw.Get(models.FieldCategory)

	rec.ScrapedAt, issues = v.resolveScrapedAt(raw, issues)

	return rec, issues, nil
}

// parsePrice normalizes and parses a raw price. Currency symbols and
// thousands separators are stripped before parsing. The second return value
// is the ISO code inferred from a recognized symbol, or "".
func (v *Validator) parsePrice(raw string) (float64, string, error) {
	s := strings.TrimSpace(raw)

	inferred := ""

	for _, cs := range currencySymbols {
		if strings.HasPrefix(s, cs.symbol) {
			inferred = cs.code
			s = strings.TrimPrefix(s, cs.symbol)

			break
		}

		if strings.HasSuffix(s, cs.symbol) {
			inferred = cs.code
			s = strings.TrimSuffix(s, cs.symbol)

			break
		}
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}

	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}

	return price, inferred, nil
}

// resolveCurrency resolves the record currency: an explicit 3-letter code
// wins, a recognized price symbol is used as a fallback, otherwise the
// unknown sentinel. Every normalization applied on the way, including a case
// fix on an explicit code, counts as a correction.
func (v *Validator) resolveCurrency(raw models.RawRecord, symbolCurrency string, issues []Issue) (string, []Issue) {
	if code, ok := raw.Get(models.FieldCurrency); ok {
		upper := strings.ToUpper(code)
		if v.codePattern.MatchString(upper) {
			if upper != code {
				issues = append(issues, Issue{
					Field:  models.FieldCurrency,
					Detail: fmt.Sprintf("upcased currency code %q", code),
				})
			}

			return upper, issues
		}

		issues = append(issues, Issue{
			Field:  models.FieldCurrency,
			Detail: fmt.Sprintf("replaced malformed currency %q", code),
		})
	}

	if symbolCurrency != "" {
		issues = append(issues, Issue{
			Field:  models.FieldCurrency,
			Detail: "inferred currency from price symbol",
		})

		return symbolCurrency, issues
	}

	issues = append(issues, Issue{
		Field:  models.FieldCurrency,
		Detail: "defaulted to unknown",
	})

	return models.CurrencyUnknown, issues
}

// parseRating extracts the first decimal number from a raw rating string
// (e.g. "⭐ 4.8 / 5"). Returns false when no number is found or the value is
// outside [0,5].
func (v *Validator) parseRating(raw string) (float64, bool) {
	match := v.numberPattern.FindString(raw)
	if match == "" {
		return 0, false
	}

	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}

	if rating < 0 || rating > 5 {
		return 0, false
	}

	return rating, true
}

// resolveScrapedAt uses the extractor-supplied timestamp when it parses,
// otherwise stamps the record with the injected clock.
func (v *Validator) resolveScrapedAt(raw models.RawRecord, issues []Issue) (time.Time, []Issue) {
	if rawTS, ok := raw.Get(models.FieldScrapedAt); ok {
		if ts, err := time.Parse(time.RFC3339, rawTS); err == nil {
			return ts, issues
		}

		issues = append(issues, Issue{
			Field:  models.FieldScrapedAt,
			Detail: fmt.Sprintf("replaced unparsable timestamp %q", rawTS),
		})
	}

	return v.now(), issues
}
