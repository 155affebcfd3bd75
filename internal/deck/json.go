package deck

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON renders the card in the compact two-character wire form,
// e.g. "Th" or "Bj".
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatCards([]Card{c}))
}

// UnmarshalJSON parses the compact wire form.
func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	cards, err := ParseCards(s)
	if err != nil {
		return err
	}
	if len(cards) != 1 {
		return fmt.Errorf("expected one card, got %q", s)
	}
	*c = cards[0]
	return nil
}
