package cardlookup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mtgcrafter/manalysis/internal/cards"
	"github.com/mtgcrafter/manalysis/internal/cards/scryfall"
	"github.com/mtgcrafter/manalysis/internal/storage"
)

// stubFetcher serves canned cards and counts calls.
type stubFetcher struct {
	cards map[string]*scryfall.Card
	err   error
	calls int
}

func (f *stubFetcher) GetCardNamed(_ context.Context, name string) (*scryfall.Card, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	card, ok := f.cards[name]
	if !ok {
		return nil, &scryfall.NotFoundError{URL: name}
	}
	return card, nil
}

func newTestStorage(t *testing.T) (*storage.Service, *storage.DB) {
	t.Helper()

	config := storage.DefaultConfig(filepath.Join(t.TempDir(), "cards.db"))
	config.AutoMigrate = true

	db, err := storage.Open(config)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return storage.NewService(db), db
}

func TestCardInfoFetchesAndCaches(t *testing.T) {
	store, _ := newTestStorage(t)
	fetcher := &stubFetcher{cards: map[string]*scryfall.Card{
		"Llanowar Elves": {
			ID:           "abc-123",
			Name:         "Llanowar Elves",
			ManaCost:     "{G}",
			CMC:          1,
			TypeLine:     "Creature — Elf Druid",
			OracleText:   "{T}: Add {G}.",
			ProducedMana: []string{"G"},
		},
	}}
	svc := NewService(store, fetcher, ServiceOptions{})

	info, err := svc.CardInfo("Llanowar Elves")
	if err != nil {
		t.Fatalf("CardInfo() error: %v", err)
	}
	if info.ManaValue != 1 || !info.IsRock || info.Produces != cards.Green {
		t.Errorf("info = %+v, want a 1-mana green producer", info)
	}

	// Second lookup must come from the cache.
	if _, err := svc.CardInfo("Llanowar Elves"); err != nil {
		t.Fatalf("cached CardInfo() error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}
}

func TestCardInfoMissAndFetchFails(t *testing.T) {
	store, _ := newTestStorage(t)
	fetcher := &stubFetcher{err: errors.New("network down")}
	svc := NewService(store, fetcher, ServiceOptions{})

	if _, err := svc.CardInfo("Anything"); err == nil {
		t.Error("expected error when cache misses and fetch fails")
	}
}

func TestCardInfoFallsBackToStaleCache(t *testing.T) {
	store, db := newTestStorage(t)
	ctx := context.Background()

	if err := store.SaveCard(ctx, &storage.Card{
		Name:       "Mountain",
		TypeLine:   "Basic Land — Mountain",
		OracleText: "{T}: Add {R}.",
	}); err != nil {
		t.Fatalf("SaveCard() error: %v", err)
	}

	// Age the row past any reasonable threshold.
	if _, err := db.Conn().ExecContext(ctx,
		`UPDATE cards SET last_updated = datetime('now', '-30 days')`); err != nil {
		t.Fatalf("backdating cache: %v", err)
	}

	fetcher := &stubFetcher{err: errors.New("network down")}
	svc := NewService(store, fetcher, ServiceOptions{})

	info, err := svc.CardInfo("Mountain")
	if err != nil {
		t.Fatalf("CardInfo() error: %v, want stale-cache fallback", err)
	}
	if !info.IsLand || info.Produces != cards.Red {
		t.Errorf("info = %+v, want a red-producing land", info)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1 (refresh attempted)", fetcher.calls)
	}
}

func TestCardInfoUsesFrontFace(t *testing.T) {
	store, _ := newTestStorage(t)
	fetcher := &stubFetcher{cards: map[string]*scryfall.Card{
		"Malakir Rebirth // Malakir Mire": {
			ID:     "mdfc-1",
			Name:   "Malakir Rebirth // Malakir Mire",
			Layout: "modal_dfc",
			CMC:    1,
			CardFaces: []scryfall.CardFace{
				{Name: "Malakir Rebirth", ManaCost: "{B}", TypeLine: "Instant", OracleText: "Choose target creature."},
				{Name: "Malakir Mire", TypeLine: "Land", OracleText: "{T}: Add {B}."},
			},
		},
	}}
	svc := NewService(store, fetcher, ServiceOptions{})

	info, err := svc.CardInfo("Malakir Rebirth // Malakir Mire")
	if err != nil {
		t.Fatalf("CardInfo() error: %v", err)
	}
	if info.IsLand {
		t.Error("front face is the instant, card should not count as a land")
	}
	if len(info.Pips) != 1 || info.Pips[0] != cards.Black {
		t.Errorf("Pips = %v, want one black pip from the front face", info.Pips)
	}
}

func TestWarm(t *testing.T) {
	store, _ := newTestStorage(t)
	fetcher := &stubFetcher{cards: map[string]*scryfall.Card{
		"Forest": {ID: "f1", Name: "Forest", TypeLine: "Basic Land — Forest", OracleText: "{T}: Add {G}."},
		"Island": {ID: "i1", Name: "Island", TypeLine: "Basic Land — Island", OracleText: "{T}: Add {U}."},
	}}
	svc := NewService(store, fetcher, ServiceOptions{})

	if err := svc.Warm(context.Background(), []string{"Forest", "Island"}); err != nil {
		t.Fatalf("Warm() error: %v", err)
	}

	count, err := store.CountCards(context.Background())
	if err != nil {
		t.Fatalf("CountCards() error: %v", err)
	}
	if count != 2 {
		t.Errorf("cached cards = %d, want 2", count)
	}

	if err := svc.Warm(context.Background(), []string{"Missing Card"}); err == nil {
		t.Error("expected error warming an unknown card")
	}
}

func TestRefresh(t *testing.T) {
	store, db := newTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"Forest", "Phased Out"} {
		if err := store.SaveCard(ctx, &storage.Card{Name: name, TypeLine: "Basic Land"}); err != nil {
			t.Fatalf("SaveCard(%q) error: %v", name, err)
		}
	}
	if err := store.SaveCard(ctx, &storage.Card{Name: "Island", TypeLine: "Basic Land — Island"}); err != nil {
		t.Fatalf("SaveCard() error: %v", err)
	}

	// Age everything except Island past the threshold. Scryfall still
	// knows Forest but not the phased-out card.
	if _, err := db.Conn().ExecContext(ctx,
		`UPDATE cards SET last_updated = datetime('now', '-30 days') WHERE name != 'Island'`); err != nil {
		t.Fatalf("backdating cache: %v", err)
	}

	fetcher := &stubFetcher{cards: map[string]*scryfall.Card{
		"Forest": {ID: "f1", Name: "Forest", TypeLine: "Basic Land — Forest", OracleText: "{T}: Add {G}.", ProducedMana: []string{"G"}},
	}}
	svc := NewService(store, fetcher, ServiceOptions{})

	stats, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if stats.Refreshed != 1 || stats.Removed != 1 || stats.Cached != 2 {
		t.Errorf("stats = %+v, want 1 refreshed, 1 removed, 2 cached", stats)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2 (only stale cards fetched)", fetcher.calls)
	}

	// The refreshed row carries the new data.
	card, err := store.GetCard(ctx, "Forest")
	if err != nil {
		t.Fatalf("GetCard() error: %v", err)
	}
	if card == nil || card.OracleText != "{T}: Add {G}." {
		t.Errorf("refreshed card = %+v, want updated oracle text", card)
	}

	// The unknown card is gone.
	if card, err := store.GetCard(ctx, "Phased Out"); err != nil || card != nil {
		t.Errorf("GetCard(Phased Out) = (%+v, %v), want removed", card, err)
	}
}
