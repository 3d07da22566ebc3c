package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Card represents a cached card in the local database.
type Card struct {
	Name         string
	ScryfallID   *string // Scryfall UUID (may be NULL for manually seeded rows)
	ManaCost     string
	ManaValue    float64
	TypeLine     string
	OracleText   string
	ProducedMana []string   // Mana colors the card can produce (WUBRG letters)
	CachedAt     *time.Time // When the card was first cached (may be NULL)
	LastUpdated  *time.Time // When the card was last refreshed (may be NULL)
}

// Service provides card cache operations on top of a DB.
type Service struct {
	db *DB
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{db: db}
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}

// SaveCard saves or updates a card in the cache. Lookups are
// case-insensitive on name.
func (s *Service) SaveCard(ctx context.Context, card *Card) error {
	query := `
		INSERT INTO cards (
			name, scryfall_id, mana_cost, mana_value, type_line, oracle_text, produced_mana, last_updated
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP
		)
		ON CONFLICT(name) DO UPDATE SET
			scryfall_id = excluded.scryfall_id,
			mana_cost = excluded.mana_cost,
			mana_value = excluded.mana_value,
			type_line = excluded.type_line,
			oracle_text = excluded.oracle_text,
			produced_mana = excluded.produced_mana,
			last_updated = CURRENT_TIMESTAMP
	`

	_, err := s.db.Conn().ExecContext(ctx, query,
		card.Name, card.ScryfallID, card.ManaCost, card.ManaValue,
		card.TypeLine, card.OracleText, strings.Join(card.ProducedMana, ","),
	)
	if err != nil {
		return fmt.Errorf("failed to save card %q: %w", card.Name, err)
	}

	return nil
}

// GetCard retrieves a card by name. Returns (nil, nil) on a cache miss.
func (s *Service) GetCard(ctx context.Context, name string) (*Card, error) {
	query := `
		SELECT name, scryfall_id, mana_cost, mana_value, type_line, oracle_text, produced_mana, cached_at, last_updated
		FROM cards
		WHERE name = ?
	`

	var card Card
	var produced string
	err := s.db.Conn().QueryRowContext(ctx, query, name).Scan(
		&card.Name, &card.ScryfallID, &card.ManaCost, &card.ManaValue,
		&card.TypeLine, &card.OracleText, &produced, &card.CachedAt, &card.LastUpdated,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}

	if produced != "" {
		card.ProducedMana = strings.Split(produced, ",")
	}

	return &card, nil
}

// CountCards returns the number of cached cards.
func (s *Service) CountCards(ctx context.Context) (int, error) {
	var count int
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

// GetStaleCards retrieves cards that haven't been refreshed in the specified
// duration, oldest first.
func (s *Service) GetStaleCards(ctx context.Context, olderThan time.Duration) ([]*Card, error) {
	seconds := int64(olderThan.Seconds())

	query := `
		SELECT name, scryfall_id, mana_cost, mana_value, type_line, oracle_text, produced_mana, cached_at, last_updated
		FROM cards
		WHERE unixepoch(last_updated) <= unixepoch('now', '-' || ? || ' seconds')
		ORDER BY last_updated ASC
	`

	rows, err := s.db.Conn().QueryContext(ctx, query, seconds)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stale []*Card
	for rows.Next() {
		var card Card
		var produced string
		err := rows.Scan(
			&card.Name, &card.ScryfallID, &card.ManaCost, &card.ManaValue,
			&card.TypeLine, &card.OracleText, &produced, &card.CachedAt, &card.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if produced != "" {
			card.ProducedMana = strings.Split(produced, ",")
		}
		stale = append(stale, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return stale, nil
}

// DeleteCard removes a card from the cache. Deleting a missing card is not
// an error.
func (s *Service) DeleteCard(ctx context.Context, name string) error {
	_, err := s.db.Conn().ExecContext(ctx, `DELETE FROM cards WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete card %q: %w", name, err)
	}
	return nil
}
