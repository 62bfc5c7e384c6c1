package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/engine"
)

// fakeStore is an in-memory contact store served over HTTP so commands
// can be exercised end to end.
type fakeStore struct {
	mu          sync.Mutex
	contacts    []contacts.Contact
	batches     [][]contacts.Contact
	updatePaths []string
	listCalls   int
	ackCalls    int
	removeAlls  int
}

// newFakeStore starts a fake store seeded with the given contacts.
func newFakeStore(t *testing.T, seed ...contacts.Contact) (*fakeStore, *httptest.Server) {
	t.Helper()
	f := &fakeStore{contacts: seed}
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeStore) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/meta", func(w http.ResponseWriter, _ *http.Request) {
		writeBody(w, map[string]string{"api_version": "1.4.0"})
	})

	mux.HandleFunc("GET /v1/contacts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listCalls++

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page := []contacts.Contact{}
		if end := min(offset+limit, len(f.contacts)); offset < end {
			page = f.contacts[offset:end]
		}
		writeBody(w, map[string]any{"contacts": page})
	})

	mux.HandleFunc("POST /v1/contacts/batch", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contacts []contacts.Contact `json:"contacts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.batches = append(f.batches, req.Contacts)
		f.contacts = append(f.contacts, req.Contacts...)
		writeBody(w, engine.CreationOutcome{Created: req.Contacts, Total: len(req.Contacts)})
	})

	mux.HandleFunc("POST /v1/contacts/remove", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []contacts.ID `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, id := range req.IDs {
			for i, c := range f.contacts {
				if c.ID == id {
					f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
					break
				}
			}
		}
		writeBody(w, engine.RemoveOutcome{Removed: req.IDs})
	})

	mux.HandleFunc("DELETE /v1/contacts", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.removeAlls++
		f.contacts = nil
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("PUT /v1/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.updateContact(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("PUT /v1/contacts/{id}/metadata", func(w http.ResponseWriter, r *http.Request) {
		f.updateContact(w, r, r.PathValue("id"))
	})

	mux.HandleFunc("POST /v1/events/ack", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.ackCalls++
		f.mu.Unlock()
		writeBody(w, struct{}{})
	})

	return mux
}

func (f *fakeStore) updateContact(w http.ResponseWriter, r *http.Request, id string) {
	var c contacts.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatePaths = append(f.updatePaths, r.URL.Path)
	for i := range f.contacts {
		if f.contacts[i].ID == contacts.ID(id) {
			f.contacts[i] = c
		}
	}
	writeBody(w, engine.UpdateResult{Contact: c, Cards: c.Cards})
}

func writeBody(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newCLIHome points ROLO_HOME at a fresh directory holding a config
// file for the given store URL. Extra YAML is appended verbatim.
func newCLIHome(t *testing.T, storeURL, extraConfig string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("ROLO_HOME", home)

	content := fmt.Sprintf("store:\n  base_url: %s\n%s", storeURL, extraConfig)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0600))
	return home
}

// runCLI executes the root command with the given args, capturing all
// output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	root := NewRootCmd("test")
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true
	err := root.Execute()
	return buf.String(), err
}
