// Package pricing resolves the billable cost of a shipment from its category,
// destination, and weight. Resolution is pure: the same inputs always produce
// the same cost, which keeps the resolver property-testable.
package pricing

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pniceshipping/portal/internal/core/domain"
)

// Resolver maps (category, destination, weight) to a monetary cost.
//
// Categories matching the fixed-price catalog bill at their flat price and
// the weight is ignored entirely. That is the business rule for high-value
// items (phones, laptops, satellite kits), not an oversight. Everything else
// bills weight × the destination's per-pound rate.
type Resolver struct {
	fixed    map[string]float64 // canonical slug → flat price
	perPound map[string]float64 // canonical destination → rate per pound
}

// NewResolver builds a Resolver. Nil maps select the compiled-in defaults.
// Keys of the supplied maps are canonicalized, so config files may spell
// categories the same way customers do.
func NewResolver(fixed, perPound map[string]float64) *Resolver {
	r := &Resolver{
		fixed:    make(map[string]float64),
		perPound: make(map[string]float64),
	}
	if fixed == nil {
		fixed = defaultFixedPrices
	}
	if perPound == nil {
		perPound = defaultPerPoundRates
	}
	for k, v := range fixed {
		r.fixed[Canonicalize(k)] = v
	}
	for k, v := range perPound {
		r.perPound[Canonicalize(k)] = v
	}
	return r
}

// Cost resolves the shipping cost for one shipment.
func (r *Resolver) Cost(category, destination string, weight float64) (float64, error) {
	if price, ok := r.fixed[Canonicalize(category)]; ok {
		return price, nil
	}

	rate, ok := r.perPound[Canonicalize(destination)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownDestination, destination)
	}
	return RoundCents(weight * rate), nil
}

// PerPoundRate exposes the configured rate for a destination.
func (r *Resolver) PerPoundRate(destination string) (float64, error) {
	rate, ok := r.perPound[Canonicalize(destination)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownDestination, destination)
	}
	return rate, nil
}

// IsFixedPrice reports whether the category bills at a flat price.
func (r *Resolver) IsFixedPrice(category string) bool {
	_, ok := r.fixed[Canonicalize(category)]
	return ok
}

// RoundCents rounds a monetary amount to two decimals, away from zero.
func RoundCents(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonicalize reduces free-text category and destination names to a stable
// slug: diacritics folded, lower-cased, spaces and hyphens removed, then known
// aliases collapsed. "Port-au-Prince", "port au prince", and "PortAuPrince"
// all resolve to the same key.
func Canonicalize(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch r {
		case ' ', '-', '_', '\t':
			continue
		}
		b.WriteRune(r)
	}
	slug := b.String()

	if canonical, ok := aliases[slug]; ok {
		return canonical
	}
	return slug
}
