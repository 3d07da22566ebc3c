package scryfall

import (
	"errors"
	"fmt"
)

// Card represents a Magic card from Scryfall, limited to the fields the
// simulation needs.
type Card struct {
	ID       string `json:"id"`
	OracleID string `json:"oracle_id"`

	Name         string   `json:"name"`
	Layout       string   `json:"layout"`
	ManaCost     string   `json:"mana_cost,omitempty"`
	CMC          float64  `json:"cmc"`
	TypeLine     string   `json:"type_line"`
	OracleText   string   `json:"oracle_text,omitempty"`
	Colors       []string `json:"colors,omitempty"`
	ProducedMana []string `json:"produced_mana,omitempty"`

	// Card faces (for DFCs, MDFCs, split cards)
	CardFaces []CardFace `json:"card_faces,omitempty"`
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name       string   `json:"name"`
	ManaCost   string   `json:"mana_cost,omitempty"`
	TypeLine   string   `json:"type_line"`
	OracleText string   `json:"oracle_text,omitempty"`
	Colors     []string `json:"colors,omitempty"`
}

// FrontFace returns the face whose cost and text govern casting from hand.
// For single-faced cards that is the card itself.
func (c *Card) FrontFace() CardFace {
	if len(c.CardFaces) > 0 {
		return c.CardFaces[0]
	}
	return CardFace{
		Name:       c.Name,
		ManaCost:   c.ManaCost,
		TypeLine:   c.TypeLine,
		OracleText: c.OracleText,
		Colors:     c.Colors,
	}
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound reports whether the error is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
