// internal/service/xilnex/sync.go
package xilnex

import (
	"context"
	"fmt"
	"sync"

	"crm-service/internal/domain/customer"

	"go.uber.org/zap"
)

// BatchResult pairs a customer id with its own sync outcome.
type BatchResult struct {
	CustomerID string  `json:"customerId"`
	Result     *Result `json:"result"`
}

// SyncContact updates the external record when the customer already has one
// and creates it otherwise. A disabled integration yields a skipped success
// without any network call. It never returns a nil Result and never panics.
func (c *Client) SyncContact(ctx context.Context, contact *customer.Customer) (res *Result) {
	if !c.Enabled() {
		return skipped()
	}
	if contact == nil {
		return failure("contact is nil", 0, nil)
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("xilnex sync panicked",
				zap.String("customer_id", contact.ID),
				zap.Any("panic", r),
			)
			res = failure(fmt.Sprintf("unexpected sync error: %v", r), 0, nil)
		}
	}()

	c.logger.Debug("syncing contact",
		zap.String("customer_id", contact.ID),
		zap.String("xilnex_status", ExternalStatus(contact.Status)),
		zap.Bool("update", contact.ExternalClientID != nil && *contact.ExternalClientID != ""),
	)

	var err error
	if contact.ExternalClientID != nil && *contact.ExternalClientID != "" {
		res, err = c.UpdateClient(ctx, *contact.ExternalClientID, contact)
	} else {
		res, err = c.CreateClient(ctx, contact)
	}
	if err != nil {
		return failure(err.Error(), 0, nil)
	}
	return res
}

// BatchSyncContacts syncs contacts in groups of batchSize. Members of a group
// run concurrently; groups run one after another with the configured pause in
// between. Results keep input order and one failure never stops the others.
// A disabled integration returns an empty slice.
func (c *Client) BatchSyncContacts(ctx context.Context, contacts []*customer.Customer, batchSize int) []BatchResult {
	if !c.Enabled() {
		return []BatchResult{}
	}
	if batchSize <= 0 {
		batchSize = c.cfg.BatchSize
	}

	results := make([]BatchResult, len(contacts))

	for start := 0; start < len(contacts); start += batchSize {
		end := start + batchSize
		if end > len(contacts) {
			end = len(contacts)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = BatchResult{
					CustomerID: contactID(contacts[i]),
					Result:     c.SyncContact(ctx, contacts[i]),
				}
			}(i)
		}
		wg.Wait()

		if end < len(contacts) {
			if err := c.pause(ctx, c.cfg.BatchPause); err != nil {
				for i := end; i < len(contacts); i++ {
					results[i] = BatchResult{
						CustomerID: contactID(contacts[i]),
						Result:     failure(err.Error(), 0, nil),
					}
				}
				break
			}
		}
	}

	c.logger.Info("xilnex batch sync finished",
		zap.Int("contacts", len(contacts)),
		zap.Int("batch_size", batchSize),
	)

	return results
}

func contactID(c *customer.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}
