package i18n

import "strings"

const (
	GroupMaritalStatus    = "maritalStatus"
	GroupHiringType       = "hiringType"
	GroupAdministration   = "administration"
	GroupRelationshipType = "relationshipType"
)

type Option struct {
	Token string `json:"value"`
	Label string `json:"label"`
}

type entry struct {
	token string
	ar    string
	en    string
}

// labels is the single translation table between stored tokens and what the
// forms display. Order is the order options are offered in.
var labels = map[string][]entry{
	GroupMaritalStatus: {
		{"single", "أعزب", "Single"},
		{"married", "متزوج", "Married"},
		{"divorced", "مطلق", "Divorced"},
		{"widowed", "أرمل", "Widowed"},
	},
	GroupHiringType: {
		{"full-time", "دوام كامل", "Full Time"},
		{"part-time", "دوام جزئي", "Part Time"},
		{"contract", "عقد", "Contract"},
		{"temporary", "مؤقت", "Temporary"},
	},
	GroupAdministration: {
		{"human-resources", "الموارد البشرية", "Human Resources"},
		{"finance", "المالية", "Finance"},
		{"operations", "العمليات", "Operations"},
		{"it", "تقنية المعلومات", "Information Technology"},
		{"marketing", "التسويق", "Marketing"},
		{"legal", "الشؤون القانونية", "Legal Affairs"},
		{"procurement", "المشتريات", "Procurement"},
	},
	GroupRelationshipType: {
		{"father", "أب", "Father"},
		{"mother", "أم", "Mother"},
		{"spouse", "زوج/زوجة", "Spouse"},
		{"son", "ابن", "Son"},
		{"daughter", "ابنة", "Daughter"},
		{"brother", "أخ", "Brother"},
		{"sister", "أخت", "Sister"},
	},
}

// Tokens lists the canonical tokens of a group.
func Tokens(group string) []string {
	out := make([]string, 0, len(labels[group]))
	for _, e := range labels[group] {
		out = append(out, e.token)
	}
	return out
}

// Options lists a group's tokens with labels in lang.
func Options(group, lang string) []Option {
	out := make([]Option, 0, len(labels[group]))
	for _, e := range labels[group] {
		out = append(out, Option{Token: e.token, Label: e.label(lang)})
	}
	return out
}

// Label returns the display label of token, or the token itself when the
// table has no entry.
func Label(group, token, lang string) string {
	for _, e := range labels[group] {
		if e.token == token {
			return e.label(lang)
		}
	}
	return token
}

// Canonical resolves input to a stored token. The input must be exactly a
// token or exactly one of its labels (surrounding whitespace aside); nothing
// else is accepted.
func Canonical(group, input string) (string, bool) {
	value := strings.TrimSpace(input)
	if value == "" {
		return "", false
	}
	for _, e := range labels[group] {
		if value == e.token || value == e.ar || value == e.en {
			return e.token, true
		}
	}
	return "", false
}

func (e entry) label(lang string) string {
	if lang == English {
		return e.en
	}
	return e.ar
}
