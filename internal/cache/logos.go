package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultLogoTTL keeps harvested logo URLs for 30 days; airline branding
// changes rarely.
const DefaultLogoTTL = 30 * 24 * time.Hour

type logoEntry struct {
	url     string
	expires time.Time
}

// LogoIndex maps airline codes to logo URLs. Providers that expose logos
// populate it; the combiner reads it to repair offers from providers that
// do not. Safe for concurrent use.
type LogoIndex struct {
	mu      sync.RWMutex
	entries map[string]logoEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewLogoIndex(ttl time.Duration) *LogoIndex {
	if ttl <= 0 {
		ttl = DefaultLogoTTL
	}
	return &LogoIndex{
		entries: make(map[string]logoEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (i *LogoIndex) Set(code, url string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || url == "" {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[code] = logoEntry{url: url, expires: i.now().Add(i.ttl)}
}

func (i *LogoIndex) Get(code string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	entry, ok := i.entries[strings.ToUpper(code)]
	if !ok || i.now().After(entry.expires) {
		return "", false
	}
	return entry.url, true
}

// Snapshot returns the live entries as a plain map for a single combine pass.
func (i *LogoIndex) Snapshot() map[string]string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	now := i.now()
	snapshot := make(map[string]string, len(i.entries))
	for code, entry := range i.entries {
		if now.After(entry.expires) {
			continue
		}
		snapshot[code] = entry.url
	}
	return snapshot
}
