package pricing

// defaultFixedPrices is the flat-price catalog for categories whose cost does
// not scale with weight. Keys are canonicalized at Resolver construction.
var defaultFixedPrices = map[string]float64{
	"iphone 14":         70,
	"iphone 14 pro":     80,
	"iphone 14 pro max": 90,
	"iphone 15":         80,
	"iphone 15 pro":     90,
	"iphone 15 pro max": 100,
	"iphone 16":         90,
	"iphone 16 pro":     100,
	"iphone 16 pro max": 110,
	"macbook air":       120,
	"macbook pro":       150,
	"starlink kit":      130,
	"starlink mini":     100,
}

// defaultPerPoundRates covers the two destinations the business currently
// serves. Additional destinations are configured, never silently defaulted.
var defaultPerPoundRates = map[string]float64{
	"cap-haitien":    4.5,
	"port-au-prince": 5,
}

// aliases collapses spellings seen in intake free text onto catalog slugs.
// Keys and values are both in canonical (folded, separator-free) form.
var aliases = map[string]string{
	"okap":             "caphaitien",
	"capharitien":      "caphaitien",
	"pap":              "portauprince",
	"potoprens":        "portauprince",
	"starlinkstandard": "starlinkkit",
	"macbookairm2":     "macbookair",
	"macbookairm3":     "macbookair",
	"iphone14plus":     "iphone14",
	"iphone15plus":     "iphone15",
	"iphone16plus":     "iphone16",
}
