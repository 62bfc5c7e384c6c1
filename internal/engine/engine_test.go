package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/errs"
)

func TestNew(t *testing.T) {
	t.Run("requires a store", func(t *testing.T) {
		_, err := New(Config{})
		require.ErrorIs(t, err, ErrNilStore)
	})

	t.Run("defaults every optional collaborator", func(t *testing.T) {
		e, err := New(Config{Store: &fakeStore{}})
		require.NoError(t, err)

		// The defaulted engine must run a full operation without
		// panicking on nil collaborators.
		err = e.Remove(context.Background(), RemoveRequest{
			IDs:     []contacts.ID{"a"},
			Confirm: true,
		})
		require.NoError(t, err)

		_, err = e.Merge(context.Background(), map[GroupKey]MergeGroup{
			"g": {Remove: []contacts.ID{"a"}},
		})
		require.NoError(t, err)
	})
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "item error message",
			err:  ItemError{Code: 3, Message: "address book full"},
			want: "address book full",
		},
		{
			name: "item error without a message falls back to the default",
			err:  ItemError{Code: 3},
			want: contacts.DefaultCreationFailure,
		},
		{
			name: "application error message",
			err:  errs.Errorf(errs.ECONFLICT, "stale vcard"),
			want: "stale vcard",
		},
		{
			name: "wrapped application error",
			err:  fmt.Errorf("updating contact: %w", errs.Errorf(errs.ECONFLICT, "stale vcard")),
			want: "stale vcard",
		},
		{
			name: "plain error text",
			err:  errors.New("connection reset"),
			want: "connection reset",
		},
		{
			name: "nil",
			err:  nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorText(tt.err))
		})
	}
}
