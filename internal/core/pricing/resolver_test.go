package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/pniceshipping/portal/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Canonicalize tests
// ---------------------------------------------------------------------------

func TestCanonicalize_FoldsSpellingVariants(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Port-au-Prince", "portauprince"},
		{"port au prince", "portauprince"},
		{"PortAuPrince", "portauprince"},
		{"PAP", "portauprince"},
		{"Cap-Haïtien", "caphaitien"},
		{"cap haitien", "caphaitien"},
		{"Okap", "caphaitien"},
		{"iPhone 14", "iphone14"},
		{"IPHONE 14", "iphone14"},
		{"Téléphone", "telephone"},
		{"MacBook Air M2", "macbookair"},
	}

	for _, tc := range cases {
		if got := Canonicalize(tc.in); got != tc.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalize_Deterministic(t *testing.T) {
	for _, s := range []string{"Port-au-Prince", "iphone 14", "", "Déjà-Vu"} {
		if Canonicalize(s) != Canonicalize(s) {
			t.Errorf("Canonicalize(%q) not deterministic", s)
		}
	}
}

// ---------------------------------------------------------------------------
// Cost resolution tests
// ---------------------------------------------------------------------------

func TestResolver_FixedPriceIgnoresWeight(t *testing.T) {
	r := NewResolver(nil, nil)

	light, err := r.Cost("iPhone 14", "cap-haitien", 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	heavy, err := r.Cost("iphone 14", "cap-haitien", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if light != heavy {
		t.Errorf("fixed price must ignore weight: got %v and %v", light, heavy)
	}
	if light != 70 {
		t.Errorf("iphone 14 flat price = %v, want 70", light)
	}
}

func TestResolver_PerPoundRate(t *testing.T) {
	r := NewResolver(nil, nil)

	cases := []struct {
		category    string
		destination string
		weight      float64
		want        float64
	}{
		{"clothes", "cap-haitien", 10, 45},
		{"clothes", "Cap Haïtien", 2, 9},
		{"books", "port-au-prince", 4, 20},
		{"books", "PAP", 3.5, 17.5},
	}

	for _, tc := range cases {
		got, err := r.Cost(tc.category, tc.destination, tc.weight)
		if err != nil {
			t.Fatalf("Cost(%q, %q, %v): %v", tc.category, tc.destination, tc.weight, err)
		}
		if got != tc.want {
			t.Errorf("Cost(%q, %q, %v) = %v, want %v", tc.category, tc.destination, tc.weight, got, tc.want)
		}
	}
}

func TestResolver_UnknownDestination(t *testing.T) {
	r := NewResolver(nil, nil)

	_, err := r.Cost("clothes", "Jacmel", 10)
	if !errors.Is(err, domain.ErrUnknownDestination) {
		t.Fatalf("expected ErrUnknownDestination, got %v", err)
	}
}

func TestResolver_FixedCategoryWithUnknownDestination(t *testing.T) {
	// A flat-priced category resolves even when the destination has no
	// per-pound rate: the rate table is never consulted.
	r := NewResolver(nil, nil)

	got, err := r.Cost("Starlink Kit", "Jacmel", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 130 {
		t.Errorf("starlink kit flat price = %v, want 130", got)
	}
}

func TestResolver_CustomTablesOverrideDefaults(t *testing.T) {
	r := NewResolver(
		map[string]float64{"Drone DJI": 95},
		map[string]float64{"Les Cayes": 6},
	)

	if got, _ := r.Cost("drone dji", "les cayes", 3); got != 95 {
		t.Errorf("custom fixed price = %v, want 95", got)
	}
	if got, _ := r.Cost("clothes", "Les-Cayes", 2); got != 12 {
		t.Errorf("custom per-pound cost = %v, want 12", got)
	}
	// Compiled-in defaults are replaced, not merged.
	if _, err := r.Cost("clothes", "cap-haitien", 2); !errors.Is(err, domain.ErrUnknownDestination) {
		t.Errorf("expected ErrUnknownDestination for default destination, got %v", err)
	}
}

func TestResolver_CostIsPure(t *testing.T) {
	r := NewResolver(nil, nil)

	first, _ := r.Cost("clothes", "cap-haitien", 7.3)
	for i := 0; i < 100; i++ {
		again, _ := r.Cost("clothes", "cap-haitien", 7.3)
		if again != first {
			t.Fatalf("Cost not pure: got %v then %v", first, again)
		}
	}
}

func TestRoundCents(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{4.505, 4.51},
		{4.504, 4.5},
		{54.0, 54.0},
		{0.005, 0.01},
		{-2.345, -2.35},
	}
	for _, tc := range cases {
		if got := RoundCents(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("RoundCents(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDefaultCatalog_AllFixedCategoriesResolve(t *testing.T) {
	r := NewResolver(nil, nil)

	for name, price := range defaultFixedPrices {
		got, err := r.Cost(name, "nowhere", 1)
		if err != nil {
			t.Errorf("catalog category %q did not resolve: %v", name, err)
			continue
		}
		if got != price {
			t.Errorf("catalog category %q = %v, want %v", name, got, price)
		}
	}
}
