package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ankisync/internal/config"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	connect    *stubConnect
	server     *httptest.Server
}

// stubConnect is a minimal in-memory AnkiConnect endpoint.
type stubConnect struct {
	mu     sync.Mutex
	order  []int64
	notes  map[int64]map[string]string
	decks  []string
	writes int
}

func (s *stubConnect) addNote(id int64, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notes == nil {
		s.notes = make(map[int64]map[string]string)
	}
	s.order = append(s.order, id)
	s.notes[id] = fields
}

func (s *stubConnect) fieldValue(id int64, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes[id][name]
}

func (s *stubConnect) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *stubConnect) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var envelope struct {
			Action string          `json:"action"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, errMsg := s.dispatch(envelope.Action, envelope.Params)
		respond(w, result, errMsg)
	}
}

func (s *stubConnect) dispatch(action string, params json.RawMessage) (any, *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case "version":
		return 6, nil
	case "deckNames":
		return s.decks, nil
	case "findNotes":
		return s.order, nil
	case "notesInfo":
		var p struct {
			Notes []int64 `json:"notes"`
		}
		_ = json.Unmarshal(params, &p)
		infos := make([]map[string]any, 0, len(p.Notes))
		for _, id := range p.Notes {
			fields := make(map[string]any, len(s.notes[id]))
			order := 0
			for name, value := range s.notes[id] {
				fields[name] = map[string]any{"value": value, "order": order}
				order++
			}
			infos = append(infos, map[string]any{
				"noteId":    id,
				"modelName": "Vocab",
				"fields":    fields,
				"cards":     []int64{},
			})
		}
		return infos, nil
	case "multi":
		var p struct {
			Actions []struct {
				Action string `json:"action"`
				Params struct {
					Note struct {
						ID     int64             `json:"id"`
						Fields map[string]string `json:"fields"`
					} `json:"note"`
				} `json:"params"`
			} `json:"actions"`
		}
		_ = json.Unmarshal(params, &p)
		results := make([]any, 0, len(p.Actions))
		for _, inner := range p.Actions {
			if inner.Action != "updateNoteFields" {
				msg := fmt.Sprintf("unsupported inner action %q", inner.Action)
				return nil, &msg
			}
			for name, value := range inner.Params.Note.Fields {
				s.notes[inner.Params.Note.ID][name] = value
			}
			s.writes++
			results = append(results, nil)
		}
		return results, nil
	default:
		msg := fmt.Sprintf("unsupported action %q", action)
		return nil, &msg
	}
}

func respond(w http.ResponseWriter, result any, errMsg *string) {
	w.Header().Set("Content-Type", "application/json")
	payload := map[string]any{"result": result, "error": nil}
	if errMsg != nil {
		payload["error"] = *errMsg
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// writeStubEspeak creates a fake transcription binary that prints a fixed
// IPA string regardless of input.
func writeStubEspeak(t *testing.T, dir, output string) string {
	t.Helper()
	path := filepath.Join(dir, "espeak")
	script := fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' %q\n", output)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write espeak stub: %v", err)
	}
	return path
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	connect := &stubConnect{}
	server := httptest.NewServer(connect.handler())
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Anki.URL = server.URL
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Espeak.Binary = writeStubEspeak(t, base, "tɛst")
	cfg.Sync.SourceField = "Word"
	cfg.Sync.TargetField = "IPA"

	configPath := filepath.Join(base, "config.toml")
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		cfg:        &cfg,
		configPath: configPath,
		baseDir:    base,
		connect:    connect,
		server:     server,
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
