// Package i18n holds the panel's message catalogs and language negotiation.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// DefaultLang is used when a request expresses no supported preference.
const DefaultLang = "en"

var (
	loadOnce sync.Once
	catalogs map[string]map[string]string
	loadErr  error
)

type langKey struct{}

// WithLang stores the negotiated language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the language stored by WithLang or DefaultLang.
func LangFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(langKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}

func load() {
	catalogs = map[string]map[string]string{}
	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		loadErr = err
		return
	}
	for _, e := range entries {
		b, err := localesFS.ReadFile("locales/" + e.Name())
		if err != nil {
			loadErr = err
			return
		}
		m := map[string]string{}
		if err := yaml.Unmarshal(b, &m); err != nil {
			loadErr = fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
			return
		}
		catalogs[strings.TrimSuffix(e.Name(), ".yaml")] = m
	}
}

// Supported reports whether a catalog exists for lang.
func Supported(lang string) bool {
	loadOnce.Do(load)
	_, ok := catalogs[lang]
	return ok
}

// T translates code into lang. Unknown languages fall back to DefaultLang
// and unknown codes are returned unchanged.
func T(lang, code string) string {
	loadOnce.Do(load)
	if loadErr != nil {
		return code
	}
	if m, ok := catalogs[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalogs[DefaultLang][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks the first supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if Supported(base) {
			return base
		}
	}
	return DefaultLang
}
