package catalog

import (
	"encoding/json"
	"log"

	"github.com/supabase-community/supabase-go"

	"magic-mirror-server/modules/common/config"
	"magic-mirror-server/modules/common/domain"
)

// Service returns the selectable style list, preferring the remote Supabase
// table and silently falling back to the built-in catalog on any failure.
type Service struct {
	domain *domain.Domain

	// remote fetches the provider rows. Nil when Supabase is not configured;
	// replaced in tests.
	remote func() ([]Item, error)
}

// NewStaticService returns a provider that only ever serves the built-in
// catalog. Used when Supabase plays no part, kiosk demos included.
func NewStaticService(d *domain.Domain) *Service {
	return &Service{domain: d}
}

// NewService wires the Supabase client when configured. A missing or broken
// Supabase setup is not an error: the mirror works off the static catalog.
func NewService(d *domain.Domain) *Service {
	cfg := config.GetConfig()
	s := &Service{domain: d}

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		log.Printf("ℹ️  [Catalog] Supabase not configured, using static %s catalog", d.Key)
		return s
	}

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("⚠️  [Catalog] Failed to create Supabase client, using static catalog: %v", err)
		return s
	}

	s.remote = func() ([]Item, error) {
		var items []Item
		data, _, err := supabaseClient.From(d.CatalogTable).
			Select("*", "exact", false).
			Execute()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	return s
}

// Items returns the active provider list. Remote errors (a missing table
// included) and empty results substitute the fallback list, logged only -
// never surfaced to the session.
func (s *Service) Items() []Item {
	if s.remote == nil {
		return FallbackItems(s.domain)
	}

	items, err := s.remote()
	if err != nil {
		log.Printf("⚠️  [Catalog] Remote fetch failed for %q, using static catalog: %v", s.domain.CatalogTable, err)
		return FallbackItems(s.domain)
	}
	if len(items) == 0 {
		log.Printf("ℹ️  [Catalog] Table %q is empty, using static catalog", s.domain.CatalogTable)
		return FallbackItems(s.domain)
	}

	log.Printf("✅ [Catalog] Loaded %d items from %q", len(items), s.domain.CatalogTable)
	return items
}

// Merged prepends session-scoped custom items (most recent first) to the
// active provider list.
func (s *Service) Merged(custom []Item) []Item {
	items := s.Items()
	out := make([]Item, 0, len(custom)+len(items))
	out = append(out, custom...)
	out = append(out, items...)
	return out
}
