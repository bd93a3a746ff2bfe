package fitment

import "strings"

// Entry maps a canonical token to the substrings that identify it.
type Entry struct {
	Token    string
	Synonyms []string
}

// Vocabulary is scanned in declaration order; the first entry with a
// matching synonym wins.
type Vocabulary []Entry

// DriveTypes canonicalises decoder drive-type text to fwd, rwd or awd.
var DriveTypes = Vocabulary{
	{Token: "fwd", Synonyms: []string{"fwd", "front wheel drive", "2wd front", "4x2"}},
	{Token: "rwd", Synonyms: []string{"rwd", "rear wheel drive", "2wd rear"}},
	{Token: "awd", Synonyms: []string{"awd", "all wheel drive", "4wd", "4x4"}},
}

// BodyClasses canonicalises body-class text to sedan, suv, hatchback or truck.
var BodyClasses = Vocabulary{
	{Token: "sedan", Synonyms: []string{"sedan", "saloon", "passenger car"}},
	{Token: "suv", Synonyms: []string{"suv", "crossover", "sport utility", "Sport Utility Vehicle (SUV)/Multi-Purpose Vehicle (MPV)"}},
	{Token: "hatchback", Synonyms: []string{"hatchback", "5-dr", "3-dr"}},
	{Token: "truck", Synonyms: []string{"pickup", "truck", "light truck", "pickup truck"}},
}

// Normalize maps free text onto a canonical token of vocab. Blank input
// reports ok=false. Input no synonym matches comes back lower-cased.
// Synonyms are compared verbatim against the lower-cased input.
func Normalize(value string, vocab Vocabulary) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	val := strings.ToLower(value)
	for _, e := range vocab {
		for _, s := range e.Synonyms {
			if strings.Contains(val, s) {
				return e.Token, true
			}
		}
	}
	return val, true
}
