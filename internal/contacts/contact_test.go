package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldellis/rolo/internal/errs"
)

func TestNew(t *testing.T) {
	c := New("Ada Lovelace", "ada@example.com")

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Ada Lovelace", c.Name)
	assert.Equal(t, []string{"ada@example.com"}, c.Emails)

	other := New("Ada Lovelace", "ada@example.com")
	assert.NotEqual(t, c.ID, other.ID)
}

func TestValidate(t *testing.T) {
	t.Run("valid contact", func(t *testing.T) {
		c := New("Ada Lovelace", "ada@example.com")
		require.NoError(t, c.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		c := New("  ")
		err := c.Validate()
		require.Error(t, err)
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	t.Run("malformed email", func(t *testing.T) {
		c := New("Ada", "not-an-email")
		err := c.Validate()
		require.Error(t, err)
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})
}

func TestEmailHelpers(t *testing.T) {
	c := New("Ada", "ada@example.com", "lovelace@example.com")

	assert.Equal(t, "ada@example.com", c.PrimaryEmail())
	assert.True(t, c.HasEmail("ADA@example.com"))
	assert.False(t, c.HasEmail("babbage@example.com"))
	assert.Empty(t, Contact{}.PrimaryEmail())
}

func TestIDsOf(t *testing.T) {
	a := New("A")
	b := New("B")

	assert.Equal(t, []ID{a.ID, b.ID}, IDsOf([]Contact{a, b}))
	assert.Empty(t, IDsOf(nil))
}

func TestCardTypeString(t *testing.T) {
	assert.Equal(t, "cleartext", CardClearText.String())
	assert.Equal(t, "signed", CardSigned.String())
	assert.Equal(t, "encrypted", CardEncrypted.String())
	assert.Equal(t, "encrypted+signed", CardEncryptedAndSigned.String())
	assert.Equal(t, "unknown", CardType(99).String())
}
