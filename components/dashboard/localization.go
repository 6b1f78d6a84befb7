package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// TranslationService exposes locale-aware translation helpers. Providers and the shell
// only depend on this interface so applications can plug in richer engines.
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

var errMissingTranslation = errors.New("dashboard: translation not found")

// ResolveLocalizedValue selects the best translation for the provided locale and falls back to the supplied value.
// Keys are matched case-insensitively, and language-region pairs (`ar-eg`) automatically fall back to their
// base language (`ar`) when present.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	return fallback
}

// NameForLocale returns the display name for the requested locale with graceful fallback to the default name.
func (def WidgetDefinition) NameForLocale(locale string) string {
	return ResolveLocalizedValue(def.NameLocalized, locale, def.Name)
}

// DescriptionForLocale returns the localized description if available.
func (def WidgetDefinition) DescriptionForLocale(locale string) string {
	return ResolveLocalizedValue(def.DescriptionLocalized, locale, def.Description)
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(locale)), "_", "-")
}

func translateOrFallback(ctx context.Context, svc TranslationService, key, locale, fallback string, params map[string]any) string {
	if svc != nil {
		if translated, err := svc.Translate(ctx, key, locale, params); err == nil && translated != "" {
			return translated
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}

// Catalog is an in-memory TranslationService keyed by locale then message key.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
}

// NewCatalog builds a catalog from locale -> key -> message.
func NewCatalog(messages map[string]map[string]string) *Catalog {
	c := &Catalog{messages: map[string]map[string]string{}}
	for locale, entries := range messages {
		c.Add(locale, entries)
	}
	return c
}

// Add merges entries for a locale.
func (c *Catalog) Add(locale string, entries map[string]string) {
	locale = normalizeLocale(locale)
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.messages[locale]
	if !ok {
		bucket = map[string]string{}
		c.messages[locale] = bucket
	}
	for key, value := range entries {
		bucket[key] = value
	}
}

// Translate looks the key up for the locale, then its base language.
func (c *Catalog) Translate(_ context.Context, key, locale string, _ map[string]any) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, candidate := range localeCandidates(locale) {
		if value, ok := c.messages[candidate][key]; ok && value != "" {
			return value, nil
		}
	}
	return "", errMissingTranslation
}

// DefaultCatalog carries Arabic labels for the navigation shell and panel titles.
// English falls through to the built-in labels.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[string]map[string]string{
		"ar": {
			"dashboard.brand":          "لوحة IAIS",
			"dashboard.nav.home":       "الرئيسية",
			"dashboard.nav.overview":   "لوحة التحكم",
			"dashboard.nav.crops":      "المحاصيل",
			"dashboard.nav.livestock":  "الثروة الحيوانية",
			"dashboard.nav.market":     "أسعار السوق",
			"dashboard.nav.maps":       "الخرائط الجغرافية",
			"dashboard.nav.weather":    "الطقس",
			"dashboard.nav.reports":    "التقارير",
			"dashboard.nav.partners":   "الشركاء",
			"dashboard.nav.messages":   "الرسائل",
			"dashboard.nav.resources":  "الموارد",
			"dashboard.nav.settings":   "الإعدادات",
			"dashboard.tab.overview":   "نظرة عامة",
			"dashboard.tab.crops":      "المحاصيل",
			"dashboard.tab.livestock":  "الثروة الحيوانية",
			"dashboard.tab.market":     "السوق",
			"dashboard.tab.maps":       "الخرائط",
			"dashboard.alerts.title":   "الإشعارات والتنبيهات",
			"dashboard.metrics.title":  "نظرة عامة على المؤشرات الرئيسية",
			"dashboard.probe.checking": "جارٍ التحقق من الاتصال...",
		},
	})
}
