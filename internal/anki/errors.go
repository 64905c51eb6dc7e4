package anki

import "fmt"

// UnavailableError reports that the AnkiConnect endpoint could not be reached.
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("ankiconnect unreachable at %s: %v (is Anki running with the AnkiConnect add-on?)", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// StoreError reports a non-null error member in an AnkiConnect response.
// Rejected queries and per-call failures both arrive through this channel.
type StoreError struct {
	Action  string
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ankiconnect %s: %s", e.Action, e.Message)
}
