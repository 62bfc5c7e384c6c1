package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/engine"
)

// createRequest is the POST /v1/contacts/batch body.
type createRequest struct {
	Contacts []contacts.Contact `json:"contacts"`
}

// removeRequest is the POST /v1/contacts/remove body.
type removeRequest struct {
	IDs []contacts.ID `json:"ids"`
}

// listResponse is one GET /v1/contacts page body.
type listResponse struct {
	Contacts []contacts.Contact `json:"contacts"`
}

// CreateMany creates contacts through the batch endpoint, one page at
// a time. Pages run sequentially so the cumulative progress callback
// is monotonic; the token and context are checked between pages so a
// cancellation never starts another request.
//
// Per-item failures come back in the outcome; a transport or server
// failure aborts the remaining pages and is returned alongside the
// outcome accumulated so far.
func (c *Client) CreateMany(ctx context.Context, list []contacts.Contact, opts engine.CreateOptions) (engine.CreationOutcome, error) {
	var outcome engine.CreationOutcome
	if len(list) == 0 {
		return outcome, nil
	}

	pageSize, err := c.pageSize()
	if err != nil {
		return outcome, err
	}

	completed := 0
	for start := 0; start < len(list); start += pageSize {
		if err := cancelled(ctx, opts.Token); err != nil {
			return outcome, err
		}

		end := min(start+pageSize, len(list))
		page := list[start:end]

		var pageOutcome engine.CreationOutcome
		if err := c.postJSON(ctx, "/v1/contacts/batch", createRequest{Contacts: page}, &pageOutcome); err != nil {
			return outcome, fmt.Errorf("creating contacts page %d: %w", start/pageSize, err)
		}

		outcome.Created = append(outcome.Created, pageOutcome.Created...)
		outcome.Errors = append(outcome.Errors, pageOutcome.Errors...)
		outcome.Total += pageOutcome.Total

		completed += len(page)
		if opts.OnProgress != nil {
			opts.OnProgress(completed)
		}
	}

	return outcome, nil
}

// UpdateOne writes a full contact, cards included.
func (c *Client) UpdateOne(ctx context.Context, contact contacts.Contact) (engine.UpdateResult, error) {
	var result engine.UpdateResult
	path := "/v1/contacts/" + url.PathEscape(string(contact.ID))
	if err := c.putJSON(ctx, path, contact, &result); err != nil {
		return engine.UpdateResult{}, err
	}
	return result, nil
}

// UpdateUnencryptedOne writes contact metadata against the endpoint
// that leaves card payloads untouched.
func (c *Client) UpdateUnencryptedOne(ctx context.Context, contact contacts.Contact) (engine.UpdateResult, error) {
	var result engine.UpdateResult
	path := "/v1/contacts/" + url.PathEscape(string(contact.ID)) + "/metadata"
	if err := c.putJSON(ctx, path, contact, &result); err != nil {
		return engine.UpdateResult{}, err
	}
	return result, nil
}

// RemoveMany deletes the given contacts in pages. Removal order does
// not matter, so pages run concurrently with a small limit; the first
// transport failure cancels the remaining pages.
func (c *Client) RemoveMany(ctx context.Context, ids []contacts.ID) (engine.RemoveOutcome, error) {
	var outcome engine.RemoveOutcome
	if len(ids) == 0 {
		return outcome, nil
	}

	pageSize, err := c.pageSize()
	if err != nil {
		return outcome, err
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(removePageConcurrency)

	for start := 0; start < len(ids); start += pageSize {
		end := min(start+pageSize, len(ids))
		page := ids[start:end]

		g.Go(func() error {
			var pageOutcome engine.RemoveOutcome
			if err := c.postJSON(gCtx, "/v1/contacts/remove", removeRequest{IDs: page}, &pageOutcome); err != nil {
				return fmt.Errorf("removing contacts page: %w", err)
			}
			mu.Lock()
			outcome.Removed = append(outcome.Removed, pageOutcome.Removed...)
			outcome.Errors = append(outcome.Errors, pageOutcome.Errors...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return engine.RemoveOutcome{}, err
	}
	return outcome, nil
}

// RemoveAll clears the whole remote address book.
func (c *Client) RemoveAll(ctx context.Context) error {
	return c.deleteJSON(ctx, "/v1/contacts", nil)
}

// List fetches the whole address book, one page at a time. A page
// shorter than the page size ends the listing.
func (c *Client) List(ctx context.Context) ([]contacts.Contact, error) {
	pageSize, err := c.pageSize()
	if err != nil {
		return nil, err
	}

	var list []contacts.Contact
	for offset := 0; ; offset += pageSize {
		path := fmt.Sprintf("/v1/contacts?offset=%d&limit=%d", offset, pageSize)
		var page listResponse
		if err := c.getJSON(ctx, path, &page); err != nil {
			return nil, fmt.Errorf("listing contacts: %w", err)
		}
		list = append(list, page.Contacts...)
		if len(page.Contacts) < pageSize {
			return list, nil
		}
	}
}

func (c *Client) pageSize() (int, error) {
	if c.PageSize == 0 {
		return DefaultPageSize, nil
	}
	if c.PageSize < MinPageSize || c.PageSize > MaxPageSize {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.PageSize)
	}
	return c.PageSize, nil
}

// cancelled reports the cancellation state of a batch call: the
// token's cancelled kind when the token tripped, the context error
// when the context is done.
func cancelled(ctx context.Context, token *engine.Token) error {
	if token != nil {
		if err := token.Err(); err != nil {
			return err
		}
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
