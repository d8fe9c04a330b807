package shopify

import (
	"path"
	"strings"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
)

// DefaultHiddenTag marks products excluded from listings.
const DefaultHiddenTag = "nextjs-frontend-hidden"

// Flatten returns the nodes of c in edge order. The result is never nil.
func Flatten[T any](c Connection[T]) []T {
	out := make([]T, len(c.Edges))
	for i, e := range c.Edges {
		out[i] = e.Node
	}
	return out
}

// Normalizer converts platform responses into view models.
type Normalizer struct {
	// HiddenTag excludes tagged products when filtering is requested.
	HiddenTag string
}

// ReshapeProduct flattens a platform product. It returns nil for a nil
// product, and for a hidden one when filterHidden is set.
func (n Normalizer) ReshapeProduct(raw *Product, filterHidden bool) *catalog.Product {
	if raw == nil {
		return nil
	}
	if filterHidden && n.hidden(raw.Tags) {
		return nil
	}

	p := &catalog.Product{
		ID:                  raw.ID,
		Handle:              raw.Handle,
		Title:               raw.Title,
		Description:         raw.Description,
		DescriptionHTML:     raw.DescriptionHTML,
		Vendor:              raw.Vendor,
		AvailableForSale:    raw.AvailableForSale,
		Options:             nonNil(raw.Options),
		PriceRange:          raw.PriceRange,
		CompareAtPriceRange: raw.CompareAtPriceRange,
		Images:              reshapeImages(raw.Images, raw.Title),
		Variants:            Flatten(raw.Variants),
		Collections:         Flatten(raw.Collections),
		Tags:                nonNil(raw.Tags),
		SEO:                 raw.SEO,
		UpdatedAt:           raw.UpdatedAt,
	}
	if raw.FeaturedImage != nil {
		img := reshapeImage(*raw.FeaturedImage, raw.Title)
		p.FeaturedImage = &img
	}
	return p
}

// ReshapeProducts reshapes raws with hidden filtering on, dropping nil and
// hidden products.
func (n Normalizer) ReshapeProducts(raws []*Product) []catalog.Product {
	out := make([]catalog.Product, 0, len(raws))
	for _, raw := range raws {
		if p := n.ReshapeProduct(raw, true); p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func (n Normalizer) hidden(tags []string) bool {
	tag := n.HiddenTag
	if tag == "" {
		tag = DefaultHiddenTag
	}
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// defaultTax is used when the platform has not computed tax for a cart.
var defaultTax = catalog.Money{Amount: "0.0", CurrencyCode: "USD"}

// ReshapeCart flattens a platform cart. Cost fields are taken as computed
// upstream.
func ReshapeCart(raw *Cart) *cart.Cart {
	if raw == nil {
		return nil
	}
	tax := defaultTax
	if t := raw.Cost.TotalTaxAmount; t != nil && t.Amount != "" {
		tax = *t
	}
	lines := Flatten(raw.Lines)
	for i := range lines {
		p := &lines[i].Merchandise.Product
		if p.FeaturedImage != nil {
			img := reshapeImage(Image{
				URL:            p.FeaturedImage.URL,
				AltText:        p.FeaturedImage.AltText,
				Width:          p.FeaturedImage.Width,
				Height:         p.FeaturedImage.Height,
				TransformedSrc: p.FeaturedImage.TransformedSrc,
			}, p.Title)
			p.FeaturedImage = &img
		}
	}
	return &cart.Cart{
		ID:            raw.ID,
		CheckoutURL:   raw.CheckoutURL,
		TotalQuantity: raw.TotalQuantity,
		Cost: cart.Cost{
			Subtotal: raw.Cost.SubtotalAmount,
			Total:    raw.Cost.TotalAmount,
			TotalTax: tax,
		},
		Lines: lines,
	}
}

// ReshapeCollection adds the storefront path to a platform collection.
func ReshapeCollection(raw *Collection) *catalog.Collection {
	if raw == nil {
		return nil
	}
	return &catalog.Collection{
		Handle:      raw.Handle,
		Title:       raw.Title,
		Description: raw.Description,
		SEO:         raw.SEO,
		Path:        "/products/" + raw.Handle,
		UpdatedAt:   raw.UpdatedAt,
	}
}

// ReshapeCollections reshapes raws, dropping nil entries.
func ReshapeCollections(raws []*Collection) []catalog.Collection {
	out := make([]catalog.Collection, 0, len(raws))
	for _, raw := range raws {
		if c := ReshapeCollection(raw); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

func reshapeImages(images Connection[Image], title string) []catalog.Image {
	out := make([]catalog.Image, len(images.Edges))
	for i, e := range images.Edges {
		out[i] = reshapeImage(e.Node, title)
	}
	return out
}

func reshapeImage(img Image, title string) catalog.Image {
	alt := img.AltText
	if alt == "" {
		alt = title
		if name := imageFilename(img.URL); name != "" {
			alt = title + " - " + name
		}
	}
	src := img.TransformedSrc
	if src == "" {
		src = img.URL
	}
	return catalog.Image{
		URL:            absoluteURL(img.URL),
		AltText:        alt,
		TransformedSrc: absoluteURL(src),
		Width:          img.Width,
		Height:         img.Height,
	}
}

// absoluteURL turns a protocol-relative URL into an https one.
func absoluteURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

// imageFilename returns the last path segment of u without its extension,
// or "" when u has no path segment.
func imageFilename(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if i := strings.Index(u, "//"); i >= 0 {
		u = u[i+2:]
		slash := strings.IndexByte(u, '/')
		if slash < 0 {
			return ""
		}
		u = u[slash:]
	}
	name := u[strings.LastIndexByte(u, '/')+1:]
	return strings.TrimSuffix(name, path.Ext(name))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
