package location

import "strings"

// knownNames maps lowercase location mentions to their canonical display
// names. Covers the Pune metro area plus major Indian cities; used for
// title generation and fuzzy matching, not for parsing.
var knownNames = map[string]string{
	// Major cities
	"goa":       "Goa",
	"mumbai":    "Mumbai",
	"delhi":     "Delhi",
	"bangalore": "Bangalore",
	"bengaluru": "Bangalore",
	"hyderabad": "Hyderabad",
	"chennai":   "Chennai",
	"kolkata":   "Kolkata",
	"pune":      "Pune",

	// Maharashtra cities
	"nashik":     "Nashik",
	"nagpur":     "Nagpur",
	"aurangabad": "Aurangabad",
	"solapur":    "Solapur",
	"satara":     "Satara",
	"kolhapur":   "Kolhapur",

	// Pune areas and suburbs
	"dighi":         "Dighi",
	"hinjewadi":     "Hinjewadi",
	"koregaon park": "Koregaon Park",
	"koregaon":      "Koregaon Park",
	"camp":          "Camp",
	"hadapsar":      "Hadapsar",
	"wakad":         "Wakad",
	"baner":         "Baner",
	"pimpri":        "Pimpri",
	"chinchwad":     "Chinchwad",
	"pcmc":          "Pimpri-Chinchwad",
	"katraj":        "Katraj",
	"kothrud":       "Kothrud",
	"deccan":        "Deccan",
	"shivajinagar":  "Shivajinagar",
	"fc road":       "FC Road",
	"mg road":       "MG Road",
	"jm road":       "JM Road",
	"pashan":        "Pashan",
	"bavdhan":       "Bavdhan",
	"warje":         "Warje",
	"karve nagar":   "Karve Nagar",
	"kharadi":       "Kharadi",
	"viman nagar":   "Viman Nagar",
	"yerawada":      "Yerawada",
	"pune station":  "Pune Railway Station",

	// Transportation hubs
	"airport":         "Airport",
	"pune airport":    "Pune Airport",
	"pnq":             "Pune Airport",
	"railway station": "Railway Station",
	"bus station":     "Bus Station",
	"bus stand":       "Bus Stand",
	"metro station":   "Metro Station",

	// IT parks and business areas
	"magarpatta": "Magarpatta",
	"amanora":    "Amanora",
	"cybercity":  "Cybercity",
	"blue ridge": "Blue Ridge",

	// General location types
	"current location": CurrentLocation,
	"my location":      CurrentLocation,
	"here":             CurrentLocation,
	"home":             "Home",
	"office":           "Office",
	"work":             "Office",
}

// KnownNames returns the canonical-name table keyed by lowercase mention.
func KnownNames() map[string]string {
	return knownNames
}

// FindKnownName resolves a free-text mention to its canonical display name.
// A direct hit wins; otherwise compound mentions match on containment in
// either direction. Returns "" when nothing matches.
func FindKnownName(text string) string {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	if cleaned == "" {
		return ""
	}

	if name, ok := knownNames[cleaned]; ok {
		return name
	}

	// Longest key wins so "pune airport" beats both "pune" and "airport";
	// ties break lexicographically to keep the result deterministic.
	bestKey := ""
	for key := range knownNames {
		if !strings.Contains(cleaned, key) && !strings.Contains(key, cleaned) {
			continue
		}
		if len(key) > len(bestKey) || (len(key) == len(bestKey) && key < bestKey) {
			bestKey = key
		}
	}
	if bestKey != "" {
		return knownNames[bestKey]
	}

	return ""
}

// puneKeywords are mentions that strongly indicate a Pune-area location.
var puneKeywords = []string{
	"pune", "pimpri", "chinchwad", "pcmc", "dighi", "hadapsar",
	"koregaon park", "baner", "aundh", "kothrud", "camp", "fc road",
}

// IsPuneLocation reports whether a location string is likely inside the
// Pune metro area.
func IsPuneLocation(locationString string) bool {
	lower := strings.ToLower(locationString)
	for _, keyword := range puneKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// typoReplacer fixes frequent misspellings seen in real queries before any
// matching runs.
var typoReplacer = strings.NewReplacer(
	"ispune", "pune",
	"sttion", "station",
	"rly", "railway",
	"stn", "station",
)

// NormalizeName cleans a location name: fixes known typos and collapses
// whitespace.
func NormalizeName(name string) string {
	cleaned := typoReplacer.Replace(name)
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Similarity returns a 0..1 ratio of how close two strings are, based on
// edit distance relative to the longer string.
func Similarity(a, b string) float64 {
	longer, shorter := a, b
	if len(b) > len(a) {
		longer, shorter = b, a
	}
	if len(longer) == 0 {
		return 1.0
	}
	distance := levenshteinDistance(longer, shorter)
	return float64(len(longer)-distance) / float64(len(longer))
}

// levenshteinDistance computes the classic edit distance with a rolling
// two-row matrix.
func levenshteinDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	prev := make([]int, len(ar)+1)
	curr := make([]int, len(ar)+1)

	for i := 0; i <= len(ar); i++ {
		prev[i] = i
	}

	for j := 1; j <= len(br); j++ {
		curr[0] = j
		for i := 1; i <= len(ar); i++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[i] = min(curr[i-1]+1, min(prev[i]+1, prev[i-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(ar)]
}
