// Package cardlookup provides unified card resolution with caching.
// It integrates the local storage cache and the Scryfall API client.
package cardlookup

import (
	"context"
	"fmt"
	"time"

	"github.com/mtgcrafter/manalysis/internal/cards"
	"github.com/mtgcrafter/manalysis/internal/cards/scryfall"
	"github.com/mtgcrafter/manalysis/internal/storage"
)

// CardFetcher fetches card data by exact name from a remote source.
// *scryfall.Client satisfies it.
type CardFetcher interface {
	GetCardNamed(ctx context.Context, name string) (*scryfall.Card, error)
}

// Service resolves card names cache-first, falling back to Scryfall on a
// miss. It satisfies the simulation engine's card info provider.
type Service struct {
	storage        *storage.Service
	fetcher        CardFetcher
	staleThreshold time.Duration
}

// ServiceOptions configures the card lookup service.
type ServiceOptions struct {
	// StaleThreshold is how old cached data can be before refetching from
	// Scryfall. Default: 7 days
	StaleThreshold time.Duration
}

// DefaultServiceOptions returns sensible defaults.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		StaleThreshold: 7 * 24 * time.Hour,
	}
}

// NewService creates a new card lookup service.
func NewService(store *storage.Service, fetcher CardFetcher, options ServiceOptions) *Service {
	if options.StaleThreshold == 0 {
		options.StaleThreshold = DefaultServiceOptions().StaleThreshold
	}

	return &Service{
		storage:        store,
		fetcher:        fetcher,
		staleThreshold: options.StaleThreshold,
	}
}

// CardInfo resolves a card name to the metadata the simulation needs.
// It checks the cache first, then falls back to Scryfall.
func (s *Service) CardInfo(name string) (*cards.CardInfo, error) {
	ctx := context.Background()

	cached, err := s.storage.GetCard(ctx, name)
	if err == nil && cached != nil && cached.LastUpdated != nil {
		if time.Since(*cached.LastUpdated) < s.staleThreshold {
			return cards.Build(rawFromCached(cached))
		}
	}

	fetched, err := s.fetcher.GetCardNamed(ctx, name)
	if err != nil {
		// Stale cache beats no data when the network fails.
		if cached != nil {
			return cards.Build(rawFromCached(cached))
		}
		return nil, fmt.Errorf("card %q: %w", name, err)
	}

	record := cachedFromScryfall(fetched)
	// Ignore cache write failures; we already have the data.
	_ = s.storage.SaveCard(ctx, record)

	return cards.Build(rawFromCached(record))
}

// Warm resolves a list of names so later lookups hit the cache. The first
// failure aborts; network-bound callers pass their own context.
func (s *Service) Warm(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.CardInfo(name); err != nil {
			return err
		}
	}
	return nil
}

// RefreshStats summarizes one cache refresh pass.
type RefreshStats struct {
	// Cached is the total number of cached cards after the pass.
	Cached int

	// Refreshed counts stale cards re-fetched from Scryfall.
	Refreshed int

	// Removed counts stale cards Scryfall no longer knows, dropped from
	// the cache.
	Removed int
}

// Refresh re-fetches every cached card older than the stale threshold.
// Cards Scryfall no longer recognizes are removed; any other fetch failure
// aborts the pass.
func (s *Service) Refresh(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats

	stale, err := s.storage.GetStaleCards(ctx, s.staleThreshold)
	if err != nil {
		return stats, fmt.Errorf("list stale cards: %w", err)
	}

	for _, card := range stale {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		fetched, err := s.fetcher.GetCardNamed(ctx, card.Name)
		if err != nil {
			if scryfall.IsNotFound(err) {
				if err := s.storage.DeleteCard(ctx, card.Name); err != nil {
					return stats, fmt.Errorf("remove card %q: %w", card.Name, err)
				}
				stats.Removed++
				continue
			}
			return stats, fmt.Errorf("refresh card %q: %w", card.Name, err)
		}

		if err := s.storage.SaveCard(ctx, cachedFromScryfall(fetched)); err != nil {
			return stats, fmt.Errorf("save card %q: %w", card.Name, err)
		}
		stats.Refreshed++
	}

	stats.Cached, err = s.storage.CountCards(ctx)
	if err != nil {
		return stats, fmt.Errorf("count cached cards: %w", err)
	}
	return stats, nil
}

func rawFromCached(card *storage.Card) *cards.RawCard {
	return &cards.RawCard{
		Name:         card.Name,
		ManaCost:     card.ManaCost,
		ManaValue:    card.ManaValue,
		TypeLine:     card.TypeLine,
		OracleText:   card.OracleText,
		ProducedMana: card.ProducedMana,
	}
}

// cachedFromScryfall maps an API card to a cache row. Multi-faced cards are
// cast by their front face, but keep the full name and any produced mana
// reported for the whole card.
func cachedFromScryfall(card *scryfall.Card) *storage.Card {
	face := card.FrontFace()
	scryfallID := card.ID

	return &storage.Card{
		Name:         card.Name,
		ScryfallID:   &scryfallID,
		ManaCost:     face.ManaCost,
		ManaValue:    card.CMC,
		TypeLine:     face.TypeLine,
		OracleText:   face.OracleText,
		ProducedMana: card.ProducedMana,
	}
}
