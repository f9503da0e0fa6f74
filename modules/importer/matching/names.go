package matching

import "strings"

// commonFirstNames holds first names and nicknames frequent enough on the
// roster that a fuzzy score alone is untrustworthy; these require the
// stricter floor and margin before auto-matching.
var commonFirstNames = map[string]struct{}{
	"john":    {},
	"mike":    {},
	"michael": {},
	"dave":    {},
	"david":   {},
	"jim":     {},
	"james":   {},
	"bob":     {},
	"robert":  {},
	"bill":    {},
	"william": {},
	"tom":     {},
	"thomas":  {},
	"joe":     {},
	"joseph":  {},
	"chris":   {},
	"steve":   {},
	"dan":     {},
	"daniel":  {},
	"mark":    {},
	"paul":    {},
	"rich":    {},
	"richard": {},
	"tony":    {},
	"anthony": {},
}

// nicknameGroups lists interchangeable first-name variants. Two names are
// considered the same person's name when they share a group.
var nicknameGroups = [][]string{
	{"mike", "michael", "mick", "mickey"},
	{"dave", "david"},
	{"jim", "james", "jimmy"},
	{"bob", "robert", "rob", "bobby"},
	{"bill", "william", "will", "billy"},
	{"tom", "thomas", "tommy"},
	{"joe", "joseph", "joey"},
	{"chris", "christopher", "christian"},
	{"steve", "steven", "stephen"},
	{"dan", "daniel", "danny"},
	{"rich", "richard", "rick", "dick"},
	{"tony", "anthony"},
	{"ed", "edward", "eddie", "ted"},
	{"ken", "kenneth", "kenny"},
	{"ron", "ronald", "ronnie"},
	{"don", "donald", "donnie"},
	{"pat", "patrick", "patricia"},
	{"greg", "gregory"},
	{"andy", "andrew", "drew"},
	{"nick", "nicholas"},
	{"matt", "matthew"},
	{"sam", "samuel"},
	{"frank", "francis"},
	{"larry", "lawrence"},
	{"jerry", "gerald"},
}

var nicknameIndex = buildNicknameIndex()

func buildNicknameIndex() map[string]int {
	idx := make(map[string]int)
	for i, group := range nicknameGroups {
		for _, name := range group {
			idx[name] = i
		}
	}
	return idx
}

// isCommonFirstName reports whether first is on the common-names list.
// Comparison is case-insensitive.
func isCommonFirstName(first string) bool {
	_, ok := commonFirstNames[strings.ToLower(strings.TrimSpace(first))]
	return ok
}

// firstNamesEquivalent reports whether the two first names are identical or
// known variants of each other.
func firstNamesEquivalent(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	ga, okA := nicknameIndex[a]
	gb, okB := nicknameIndex[b]
	return okA && okB && ga == gb
}

// lastNamesSimilar reports whether two last names differ only by common
// misspelling patterns: doubled consonants, interchangeable vowels, and the
// c/k substitution. It reduces both names to a skeleton and compares.
func lastNamesSimilar(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return skeleton(a) == skeleton(b)
}

func skeleton(name string) string {
	var sb strings.Builder
	var prev rune
	for _, r := range name {
		if r == 'k' {
			r = 'c'
		}
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			r = 'a'
		}
		// Collapse doubled letters.
		if r == prev {
			continue
		}
		sb.WriteRune(r)
		prev = r
	}
	return sb.String()
}
