package verify

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/crosscheck/internal/model"
)

// Sub-check weights. When a check is inapplicable (e.g. record has no
// victim name) its weight drops from both numerator and denominator.
const (
	weightName     = 30
	weightLocation = 25
	weightDate     = 20
	weightKeywords = 25
)

// checkName applies the graduated name match: exact full name, then first
// and last name tokens independently, then last name alone when it is long
// enough to be distinctive. News text often uses only a surname on second
// reference, so the surname-only match still earns half credit.
func checkName(victimName, text string) model.CheckResult {
	res := model.CheckResult{Name: "name", Applicable: victimName != ""}
	if !res.Applicable {
		return res
	}

	lowerText := strings.ToLower(text)
	lowerName := strings.ToLower(strings.TrimSpace(victimName))

	if strings.Contains(lowerText, lowerName) {
		res.Credit = 1.0
		res.Detail = "exact name match"
		return res
	}

	tokens := strings.Fields(lowerName)
	if len(tokens) >= 2 {
		first, last := tokens[0], tokens[len(tokens)-1]
		if containsWord(lowerText, first) && containsWord(lowerText, last) {
			res.Credit = 0.8
			res.Detail = "first and last name tokens matched"
			return res
		}
		if len(last) > 3 && containsWord(lowerText, last) {
			res.Credit = 0.5
			res.Detail = "last name only"
			return res
		}
	}

	res.Detail = "name not found"
	return res
}

// checkLocation matches city and state case-insensitively, accepting common
// state abbreviations (AP style and postal codes).
func checkLocation(city, state, text string) model.CheckResult {
	res := model.CheckResult{Name: "location", Applicable: city != "" || state != ""}
	if !res.Applicable {
		return res
	}

	lowerText := strings.ToLower(text)

	cityHit := city != "" && strings.Contains(lowerText, strings.ToLower(city))
	stateHit := state != "" && stateMentioned(state, text, lowerText)

	switch {
	case cityHit && stateHit:
		res.Credit = 1.0
		res.Detail = "city and state matched"
	case city != "" && state != "" && (cityHit || stateHit):
		res.Credit = 0.5
		if cityHit {
			res.Detail = "city only"
		} else {
			res.Detail = "state only"
		}
	case cityHit || stateHit:
		// Record only claims one of the two and it matched.
		res.Credit = 1.0
		res.Detail = "claimed location matched"
	default:
		res.Detail = "location not found"
	}
	return res
}

// stateAbbrevs maps full state names (lowercase) to their AP-style and
// postal abbreviations.
var stateAbbrevs = map[string][]string{
	"alabama": {"ala.", "AL"}, "alaska": {"AK"}, "arizona": {"ariz.", "AZ"},
	"arkansas": {"ark.", "AR"}, "california": {"calif.", "CA"},
	"colorado": {"colo.", "CO"}, "connecticut": {"conn.", "CT"},
	"delaware": {"del.", "DE"}, "florida": {"fla.", "FL"},
	"georgia": {"ga.", "GA"}, "hawaii": {"HI"}, "idaho": {"ID"},
	"illinois": {"ill.", "IL"}, "indiana": {"ind.", "IN"},
	"iowa": {"IA"}, "kansas": {"kan.", "KS"}, "kentucky": {"ky.", "KY"},
	"louisiana": {"la.", "LA"}, "maine": {"ME"}, "maryland": {"md.", "MD"},
	"massachusetts": {"mass.", "MA"}, "michigan": {"mich.", "MI"},
	"minnesota": {"minn.", "MN"}, "mississippi": {"miss.", "MS"},
	"missouri": {"mo.", "MO"}, "montana": {"mont.", "MT"},
	"nebraska": {"neb.", "NE"}, "nevada": {"nev.", "NV"},
	"new hampshire": {"n.h.", "NH"}, "new jersey": {"n.j.", "NJ"},
	"new mexico": {"n.m.", "NM"}, "new york": {"n.y.", "NY"},
	"north carolina": {"n.c.", "NC"}, "north dakota": {"n.d.", "ND"},
	"ohio": {"OH"}, "oklahoma": {"okla.", "OK"}, "oregon": {"ore.", "OR"},
	"pennsylvania": {"pa.", "PA"}, "rhode island": {"r.i.", "RI"},
	"south carolina": {"s.c.", "SC"}, "south dakota": {"s.d.", "SD"},
	"tennessee": {"tenn.", "TN"}, "texas": {"TX"}, "utah": {"UT"},
	"vermont": {"vt.", "VT"}, "virginia": {"va.", "VA"},
	"washington": {"wash.", "WA"}, "west virginia": {"w.va.", "WV"},
	"wisconsin": {"wis.", "WI"}, "wyoming": {"wyo.", "WY"},
}

func stateMentioned(state, text, lowerText string) bool {
	lowerState := strings.ToLower(state)
	if strings.Contains(lowerText, lowerState) {
		return true
	}
	for _, abbr := range stateAbbrevs[lowerState] {
		if abbr == strings.ToUpper(abbr) {
			// Postal code: case-sensitive whole-word match, otherwise "IN"
			// or "OR" would match ordinary prose.
			if wordRe(abbr).MatchString(text) {
				return true
			}
		} else if strings.Contains(lowerText, abbr) {
			return true
		}
	}
	return false
}

// checkDate checks the record date against the renderings articles actually
// use; ISO format almost never appears in prose. A month+year-only mention
// earns half credit.
func checkDate(dateISO, text string) model.CheckResult {
	res := model.CheckResult{Name: "date", Applicable: dateISO != ""}
	if !res.Applicable {
		return res
	}

	t, err := time.Parse("2006-01-02", dateISO)
	if err != nil {
		res.Applicable = false
		res.Detail = fmt.Sprintf("unparseable record date %q", dateISO)
		return res
	}

	lowerText := strings.ToLower(text)
	full := []string{
		strings.ToLower(t.Format("January 2, 2006")),
		strings.ToLower(t.Format("January 2 2006")),
		strings.ToLower(t.Format("Jan. 2, 2006")),
		strings.ToLower(t.Format("Jan 2, 2006")),
		strings.ToLower(t.Format("2 January 2006")),
		strings.ToLower(t.Format("January 2")),
		strings.ToLower(t.Format("Jan. 2")),
		strings.ToLower(t.Format("Jan 2")),
		t.Format("2006-01-02"),
		strings.ToLower(t.Format("1/2/2006")),
		strings.ToLower(t.Format("01/02/2006")),
	}
	for _, r := range full {
		if strings.Contains(lowerText, r) {
			res.Credit = 1.0
			res.Detail = fmt.Sprintf("matched rendering %q", r)
			return res
		}
	}

	month := strings.ToLower(t.Format("January"))
	year := t.Format("2006")
	if strings.Contains(lowerText, month) && strings.Contains(lowerText, year) {
		res.Credit = 0.5
		res.Detail = "month and year only"
		return res
	}

	res.Detail = "date not found"
	return res
}

// checkKeywords looks for the incident type's domain keywords. Two or more
// distinct hits earn full credit; a single hit is still strongly
// indicative (articles rarely repeat synonyms) and earns most of it.
func checkKeywords(it model.IncidentType, text string) model.CheckResult {
	res := model.CheckResult{Name: "keywords", Applicable: true}

	lowerText := strings.ToLower(text)
	hits := 0
	var matched []string
	for _, kw := range it.Keywords() {
		if containsWord(lowerText, kw) {
			hits++
			matched = append(matched, kw)
		}
	}

	switch {
	case hits >= 2:
		res.Credit = 1.0
	case hits == 1:
		res.Credit = 0.75
	}
	res.Detail = fmt.Sprintf("%d keyword hits: %s", hits, strings.Join(matched, ", "))
	return res
}

var wordRes = struct {
	mu sync.Mutex
	m  map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

// wordRe returns a cached whole-word matcher for the given token.
func wordRe(word string) *regexp.Regexp {
	wordRes.mu.Lock()
	defer wordRes.mu.Unlock()
	re, ok := wordRes.m[word]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
		wordRes.m[word] = re
	}
	return re
}

// containsWord matches a whole word case-sensitively against the (already
// lowercased) text.
func containsWord(lowerText, word string) bool {
	return wordRe(word).MatchString(lowerText)
}

// scoreChecks computes the renormalized weighted score for one source.
func scoreChecks(checks []model.CheckResult) int {
	weights := map[string]int{
		"name":     weightName,
		"location": weightLocation,
		"date":     weightDate,
		"keywords": weightKeywords,
	}
	num, den := 0.0, 0.0
	for _, c := range checks {
		if !c.Applicable {
			continue
		}
		w := float64(weights[c.Name])
		num += c.Credit * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return int(num/den*100 + 0.5)
}
