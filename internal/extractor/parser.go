package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"fashionetl/internal/models"
)

// Parser extracts raw product records from a catalog page. Every value is
// passed through as-is; cleaning and validation happen downstream.
type Parser struct{}

// NewParser creates a parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Page is the parse result for one catalog page.
type Page struct {
	Records []models.RawRecord
	NextURL string
}

// Parse walks the product cards of one page. scrapedAt stamps every record
// on the page with the fetch time.
func (p *Parser) Parse(html string, scrapedAt time.Time) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	page := &Page{}

	doc.Find("div.collection-card").Each(func(i int, card *goquery.Selection) {
		record := models.RawRecord{}

		title := strings.TrimSpace(card.Find("h3.product-title").First().Text())
		if title != "" {
			record[models.FieldTitle] = title
		}

		price := strings.TrimSpace(card.Find("span.price").First().Text())
		if price != "" {
			record[models.FieldPrice] = price
		}

		if id, ok := card.Attr("data-product-id"); ok && strings.TrimSpace(id) != "" {
			record[models.FieldID] = strings.TrimSpace(id)
		} else if title != "" {
			// Catalog pages without stable ids fall back to a title slug.
			record[models.FieldID] = slugify(title)
		}

		if rating := detailText(card, "rating:"); rating != "" {
			record[models.FieldRating] = rating
		}

		if category := detailText(card, "category:"); category != "" {
			record[models.FieldCategory] = category
		}

		if src, ok := card.Find("img").First().Attr("src"); ok && src != "" {
			record[models.FieldImageURL] = src
		}

		record[models.FieldScrapedAt] = scrapedAt.UTC().Format(time.RFC3339)

		page.Records = append(page.Records, record)
	})

	if href, ok := doc.Find("li.page-item.next > a.page-link").First().Attr("href"); ok {
		page.NextURL = strings.TrimSpace(href)
	}

	return page, nil
}

// detailText scans the card's detail paragraphs for a labeled value, e.g.
// "Rating: ⭐ 4.8 / 5" -> "⭐ 4.8 / 5".
func detailText(card *goquery.Selection, label string) string {
	var value string

	card.Find("div.product-details p").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if strings.HasPrefix(strings.ToLower(text), label) {
			value = strings.TrimSpace(text[len(label):])

			return false
		}

		return true
	})

	return value
}

// slugify reduces a title to a lowercase dash-separated identifier.
func slugify(s string) string {
	var b strings.Builder

	lastDash := true

	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)

			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')

				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
