package places

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// Candidate is one search query to try, in precedence order.
// Core is the bare term the relevance check compares against the returned
// place name. Trusted candidates (country-qualified queries and the exact raw
// name) skip the containment check: their construction already scopes them.
type Candidate struct {
	Query   string
	Core    string
	Trusted bool
}

var parenthetical = regexp.MustCompile(`\(([^)]+)\)`)

// stopwords are never used as a significant-word fallback query.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "near": {},
	"old": {}, "new": {}, "big": {}, "wat": {}, "van": {}, "der": {},
}

// Candidates builds the ordered list of search queries to try for a
// destination name, optionally scoped by a location hint (typically a country
// or city). Evaluated lazily by the resolver: the first accepted result wins.
//
// Precedence:
//  1. a parenthetical alternate name (bilingual labels), bare then hinted
//  2. the raw name (trusted by construction)
//  3. the raw name plus a "tourist attraction" qualifier
//  4. the raw name plus the hint (trusted)
//  5. the name with parenthetical content stripped
//  6. the first significant word plus the hint (trusted)
//
// Candidates shorter than 3 characters or purely numeric are dropped.
func Candidates(name, hint string) []Candidate {
	name = strings.TrimSpace(name)
	hint = strings.TrimSpace(hint)

	var out []Candidate
	add := func(c Candidate) {
		if !usable(c.Query) {
			return
		}
		out = append(out, c)
	}

	if m := parenthetical.FindStringSubmatch(name); m != nil {
		alt := strings.TrimSpace(m[1])
		add(Candidate{Query: alt, Core: alt})
		if hint != "" {
			add(Candidate{Query: alt + ", " + hint, Core: alt, Trusted: true})
		}
	}

	add(Candidate{Query: name, Core: name, Trusted: true})
	add(Candidate{Query: name + " tourist attraction", Core: name})
	if hint != "" {
		add(Candidate{Query: name + ", " + hint, Core: name, Trusted: true})
	}

	stripped := strings.TrimSpace(parenthetical.ReplaceAllString(name, ""))
	if stripped != name {
		add(Candidate{Query: stripped, Core: stripped})
	}

	if hint != "" {
		if word, ok := firstSignificantWord(name); ok {
			add(Candidate{Query: word + ", " + hint, Core: word, Trusted: true})
		}
	}

	return lo.UniqBy(out, func(c Candidate) string { return c.Query })
}

// firstSignificantWord returns the first word of name that is at least three
// characters, not a stopword, and not purely numeric.
func firstSignificantWord(name string) (string, bool) {
	for _, word := range strings.Fields(parenthetical.ReplaceAllString(name, "")) {
		w := strings.Trim(word, ",.;:!?\"'")
		if len(w) < 3 || numeric(w) {
			continue
		}
		if _, skip := stopwords[strings.ToLower(w)]; skip {
			continue
		}
		return w, true
	}
	return "", false
}

// usable rejects queries too short or too empty to be worth a network call.
func usable(q string) bool {
	q = strings.TrimSpace(q)
	return len(q) >= 3 && !numeric(q)
}

func numeric(s string) bool {
	seen := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			seen = true
			continue
		}
		if r == ' ' || r == '.' || r == ',' || r == '-' {
			continue
		}
		return false
	}
	return seen
}
