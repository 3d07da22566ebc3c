package simulation

import "fmt"

// DataError reports a decklist card that could not be resolved to card
// metadata. It fails the whole batch before any trial runs: silently
// dropping the card would corrupt every aggregate denominator.
type DataError struct {
	Name string
	Err  error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("card %q: no card info available", e.Name)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// ConfigError reports invalid simulation options. It is returned before any
// work begins.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid simulation options: " + e.Reason
}
