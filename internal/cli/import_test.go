package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/seal"
)

func writeImportFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadImportFile(t *testing.T) {
	t.Run("parses and fills missing IDs", func(t *testing.T) {
		path := writeImportFile(t, `[
			{"name": "Ada Lovelace", "emails": ["ada@example.com"]},
			{"id": "keep-me", "name": "Grace Hopper"}
		]`)

		list, err := readImportFile(path)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.NotEmpty(t, list[0].ID)
		assert.Equal(t, contacts.ID("keep-me"), list[1].ID)
	})

	t.Run("rejects an invalid contact", func(t *testing.T) {
		path := writeImportFile(t, `[{"name": ""}]`)

		_, err := readImportFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "contact 1")
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		path := writeImportFile(t, `{"not": "an array"`)

		_, err := readImportFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing import file")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readImportFile(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading import file")
	})
}

func TestImportCommand(t *testing.T) {
	key, err := seal.NewKey()
	require.NoError(t, err)

	marshalContacts := func(t *testing.T, list []contacts.Contact) string {
		t.Helper()
		data, err := json.Marshal(list)
		require.NoError(t, err)
		return writeImportFile(t, string(data))
	}

	t.Run("seals cards on the way in", func(t *testing.T) {
		f, server := newFakeStore(t)
		newCLIHome(t, server.URL, "seal:\n  key: "+key+"\n")

		path := marshalContacts(t, []contacts.Contact{
			{ID: "i1", Name: "Ada Lovelace", Emails: []string{"ada@example.com"}, Cards: []contacts.Card{
				{Type: contacts.CardClearText, Data: "BEGIN:VCARD"},
			}},
			{ID: "i2", Name: "Grace Hopper"},
		})

		out, err := runCLI(t, "import", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Imported 2 of 2 contacts.")

		f.mu.Lock()
		defer f.mu.Unlock()
		require.Len(t, f.batches, 1)
		require.Len(t, f.batches[0], 2)
		sealed := f.batches[0][0].Cards[0]
		assert.Equal(t, contacts.CardEncrypted, sealed.Type)
		assert.NotEqual(t, "BEGIN:VCARD", sealed.Data, "card payload must not travel in clear text")
	})

	t.Run("no-seal leaves cards alone", func(t *testing.T) {
		f, server := newFakeStore(t)
		newCLIHome(t, server.URL, "")

		path := marshalContacts(t, []contacts.Contact{
			{ID: "i1", Name: "Ada Lovelace", Cards: []contacts.Card{
				{Type: contacts.CardClearText, Data: "BEGIN:VCARD"},
			}},
		})

		_, err := runCLI(t, "import", "--no-seal", path)
		require.NoError(t, err)

		f.mu.Lock()
		defer f.mu.Unlock()
		require.Len(t, f.batches, 1)
		assert.Equal(t, "BEGIN:VCARD", f.batches[0][0].Cards[0].Data)
	})

	t.Run("missing seal key points at no-seal", func(t *testing.T) {
		_, server := newFakeStore(t)
		newCLIHome(t, server.URL, "")

		path := marshalContacts(t, []contacts.Contact{{ID: "i1", Name: "Ada Lovelace"}})

		_, err := runCLI(t, "import", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--no-seal")
	})

	t.Run("empty file imports nothing", func(t *testing.T) {
		t.Setenv("ROLO_HOME", t.TempDir())
		path := writeImportFile(t, `[]`)

		out, err := runCLI(t, "import", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Nothing to import.")
	})
}
