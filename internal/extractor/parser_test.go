package extractor

import (
	"testing"
	"time"

	"fashionetl/internal/models"
)

const catalogPageHTML = `
<html>
<body>
  <div class="collection-card" data-product-id="42">
    <img src="https://cdn.example.com/dress.jpg">
    <h3 class="product-title">Floral Dress</h3>
    <span class="price">$29.99</span>
    <div class="product-details">
      <p>Rating: ⭐ 4.8 / 5</p>
      <p>Category: Dresses</p>
    </div>
  </div>
  <div class="collection-card">
    <h3 class="product-title">Linen Shirt</h3>
    <span class="price">£15.00</span>
    <div class="product-details">
      <p>Rating: Not Rated</p>
    </div>
  </div>
  <ul class="pagination">
    <li class="page-item next"><a class="page-link" href="page2.html">Next</a></li>
  </ul>
</body>
</html>`

var testScrapedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestParser_Parse(t *testing.T) {
	page, err := NewParser().Parse(catalogPageHTML, testScrapedAt)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(page.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(page.Records))
	}

	first := page.Records[0]

	want := map[string]string{
		models.FieldID:        "42",
		models.FieldTitle:     "Floral Dress",
		models.FieldPrice:     "$29.99",
		models.FieldRating:    "⭐ 4.8 / 5",
		models.FieldCategory:  "Dresses",
		models.FieldImageURL:  "https://cdn.example.com/dress.jpg",
		models.FieldScrapedAt: "2025-06-01T12:00:00Z",
	}

	for field, wantValue := range want {
		if got := first[field]; got != wantValue {
			t.Errorf("first[%s] = %q, want %q", field, got, wantValue)
		}
	}
}

func TestParser_Parse_SlugFallbackID(t *testing.T) {
	page, err := NewParser().Parse(catalogPageHTML, testScrapedAt)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	second := page.Records[1]

	if got := second[models.FieldID]; got != "linen-shirt" {
		t.Errorf("id = %q, want title slug", got)
	}

	if _, ok := second[models.FieldCategory]; ok {
		t.Error("missing category paragraph produced a value")
	}

	if _, ok := second[models.FieldImageURL]; ok {
		t.Error("missing img produced a value")
	}
}

func TestParser_Parse_NextURL(t *testing.T) {
	page, err := NewParser().Parse(catalogPageHTML, testScrapedAt)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if page.NextURL != "page2.html" {
		t.Errorf("NextURL = %q, want page2.html", page.NextURL)
	}
}

func TestParser_Parse_LastPage(t *testing.T) {
	html := `<div class="collection-card" data-product-id="7">
		<h3 class="product-title">Silk Scarf</h3>
		<span class="price">€12.00</span>
	</div>`

	page, err := NewParser().Parse(html, testScrapedAt)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if page.NextURL != "" {
		t.Errorf("NextURL = %q, want empty on the last page", page.NextURL)
	}

	if len(page.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(page.Records))
	}
}

func TestParser_Parse_EmptyPage(t *testing.T) {
	page, err := NewParser().Parse("<html><body><p>no products</p></body></html>", testScrapedAt)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(page.Records) != 0 {
		t.Errorf("records = %d, want 0", len(page.Records))
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Linen Shirt", "linen-shirt"},
		{"  V-Neck  Tee ", "v-neck-tee"},
		{"Robe, Size 10", "robe-size-10"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
