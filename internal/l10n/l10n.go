// Package l10n looks up display strings from embedded YAML catalogs.
package l10n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys used by the resolver.
const (
	KeyUnknown    = "unknown"
	KeyGuestTitle = "guestTitle"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// Localizer maps a symbolic key to a display string.
type Localizer interface {
	Get(key string) string
}

// Bundle holds one catalog per language.
type Bundle struct {
	catalogs map[string]map[string]string
	fallback string
}

// Load reads the embedded catalogs. defaultLang must be one of them.
func Load(defaultLang string) (*Bundle, error) {
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		return nil, fmt.Errorf("katalog dizini okunamadı: %w", err)
	}
	b := &Bundle{catalogs: make(map[string]map[string]string), fallback: defaultLang}
	for _, e := range entries {
		raw, err := catalogFS.ReadFile(path.Join("catalogs", e.Name()))
		if err != nil {
			return nil, err
		}
		lang := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if err := b.Add(lang, raw); err != nil {
			return nil, err
		}
	}
	if _, ok := b.catalogs[defaultLang]; !ok {
		return nil, fmt.Errorf("varsayılan dil için katalog yok: %q", defaultLang)
	}
	return b, nil
}

// Add parses a YAML catalog for lang, replacing any previous one.
func (b *Bundle) Add(lang string, raw []byte) error {
	var catalog map[string]string
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("%s kataloğu çözümlenemedi: %w", lang, err)
	}
	b.catalogs[strings.ToLower(lang)] = catalog
	return nil
}

// Languages lists the loaded catalogs.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(b.catalogs))
	for lang := range b.catalogs {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// For returns a Localizer for the best match of an Accept-Language style
// value ("tr-TR,tr;q=0.9,en;q=0.8"). Unknown languages use the default.
func (b *Bundle) For(acceptLanguage string) Localizer {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		tag = strings.ToLower(tag)
		if c, ok := b.catalogs[tag]; ok {
			return catalog{entries: c, fallback: b.catalogs[b.fallback]}
		}
		if base, _, found := strings.Cut(tag, "-"); found {
			if c, ok := b.catalogs[base]; ok {
				return catalog{entries: c, fallback: b.catalogs[b.fallback]}
			}
		}
	}
	return b.Default()
}

func (b *Bundle) Default() Localizer {
	return catalog{entries: b.catalogs[b.fallback]}
}

type catalog struct {
	entries  map[string]string
	fallback map[string]string
}

// Get returns the key itself when no catalog knows it.
func (c catalog) Get(key string) string {
	if v, ok := c.entries[key]; ok {
		return v
	}
	if v, ok := c.fallback[key]; ok {
		return v
	}
	return key
}
