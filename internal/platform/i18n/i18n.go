package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

const (
	Arabic  = "ar"
	English = "en"
)

var Supported = []string{Arabic, English}

var matcher = language.NewMatcher([]language.Tag{language.Arabic, language.English})

// Normalize maps any BCP 47 tag to a supported language, or "" when it is
// neither Arabic nor English.
func Normalize(lang string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	switch base.String() {
	case Arabic:
		return Arabic
	case English:
		return English
	}
	return ""
}

// Negotiate picks the display language for an Accept-Language header value.
func Negotiate(acceptLanguage, fallback string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	if index == 0 {
		return Arabic
	}
	return English
}

// FromRequest honours an explicit ?lang= query parameter before the
// Accept-Language header.
func FromRequest(r *http.Request, fallback string) string {
	if lang := Normalize(r.URL.Query().Get("lang")); lang != "" {
		return lang
	}
	return Negotiate(r.Header.Get("Accept-Language"), fallback)
}

// Dir returns the text direction for lang.
func Dir(lang string) string {
	if lang == Arabic {
		return "rtl"
	}
	return "ltr"
}
