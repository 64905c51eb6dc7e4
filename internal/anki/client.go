package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ProtocolVersion is the AnkiConnect API version carried by every request.
const ProtocolVersion = 6

const defaultRequestTimeout = 60 * time.Second

// HTTPDoer describes the HTTP client used to reach AnkiConnect.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues AnkiConnect actions against a single endpoint.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPDoer overrides the default HTTP client.
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// NewClient constructs a client for the given AnkiConnect base URL.
// A zero timeout falls back to 60 seconds.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NoteInfo is one element of a notesInfo result.
type NoteInfo struct {
	NoteID    int64            `json:"noteId"`
	ModelName string           `json:"modelName"`
	Fields    map[string]Field `json:"fields"`
	Cards     []int64          `json:"cards"`
}

// Field is a named field value on a note.
type Field struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// FieldValue returns the trimmed value of the named field, or "" when absent.
func (n NoteInfo) FieldValue(name string) string {
	return strings.TrimSpace(n.Fields[name].Value)
}

// CardInfo is one element of a cardsInfo result.
type CardInfo struct {
	CardID   int64  `json:"cardId"`
	NoteID   int64  `json:"note"`
	Ord      int    `json:"ord"`
	DeckName string `json:"deckName"`
}

// FieldUpdate addresses one note field with its replacement value.
type FieldUpdate struct {
	NoteID int64
	Field  string
	Value  string
}

type requestEnvelope struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type responseEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Version returns the AnkiConnect protocol version reported by the endpoint.
// It doubles as the reachability probe run before any work starts.
func (c *Client) Version(ctx context.Context) (int, error) {
	var version int
	if err := c.invoke(ctx, "version", nil, &version); err != nil {
		return 0, err
	}
	return version, nil
}

// FindNotes returns the ids of notes matching the search query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	params := map[string]any{"query": query}
	if err := c.invoke(ctx, "findNotes", params, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NotesInfo fetches full note contents for the given ids.
func (c *Client) NotesInfo(ctx context.Context, noteIDs []int64) ([]NoteInfo, error) {
	var infos []NoteInfo
	params := map[string]any{"notes": noteIDs}
	if err := c.invoke(ctx, "notesInfo", params, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// UpdateNoteFields writes a single field update.
func (c *Client) UpdateNoteFields(ctx context.Context, update FieldUpdate) error {
	return c.invoke(ctx, "updateNoteFields", updateParams(update), nil)
}

// UpdateNoteFieldsBatch submits the updates as one multi request. AnkiConnect
// applies the wrapped actions together; a failure is reported through the
// envelope error of the multi call itself.
func (c *Client) UpdateNoteFieldsBatch(ctx context.Context, updates []FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	actions := make([]requestEnvelope, 0, len(updates))
	for _, update := range updates {
		actions = append(actions, requestEnvelope{
			Action: "updateNoteFields",
			Params: updateParams(update),
		})
	}
	params := map[string]any{"actions": actions}
	return c.invoke(ctx, "multi", params, nil)
}

// DeckNames lists every deck in the collection.
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.invoke(ctx, "deckNames", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// CreateDeck creates the deck when missing. Existing decks are untouched.
func (c *Client) CreateDeck(ctx context.Context, name string) error {
	params := map[string]any{"deck": name}
	return c.invoke(ctx, "createDeck", params, nil)
}

// CardsInfo fetches card details for the given card ids.
func (c *Client) CardsInfo(ctx context.Context, cardIDs []int64) ([]CardInfo, error) {
	var infos []CardInfo
	params := map[string]any{"cards": cardIDs}
	if err := c.invoke(ctx, "cardsInfo", params, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// ChangeDeck moves the given cards into the named deck.
func (c *Client) ChangeDeck(ctx context.Context, cardIDs []int64, deck string) error {
	params := map[string]any{"cards": cardIDs, "deck": deck}
	return c.invoke(ctx, "changeDeck", params, nil)
}

func updateParams(update FieldUpdate) map[string]any {
	return map[string]any{
		"note": map[string]any{
			"id":     update.NoteID,
			"fields": map[string]string{update.Field: update.Value},
		},
	}
}

func (c *Client) invoke(ctx context.Context, action string, params any, out any) error {
	envelope := requestEnvelope{Action: action, Version: ProtocolVersion, Params: params}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("ankiconnect %s: encode request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("ankiconnect %s: build request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &UnavailableError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UnavailableError{URL: c.baseURL, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &UnavailableError{URL: c.baseURL, Err: fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var decoded responseEnvelope
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("ankiconnect %s: decode response: %w", action, err)
	}
	if decoded.Error != nil && strings.TrimSpace(*decoded.Error) != "" {
		return &StoreError{Action: action, Message: strings.TrimSpace(*decoded.Error)}
	}

	if out == nil || len(decoded.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return fmt.Errorf("ankiconnect %s: decode result: %w", action, err)
	}
	return nil
}
