// internal/service/customer/resync.go
package customer

import (
	"context"
	"fmt"

	"crm-service/internal/domain/customer"
	wsdomain "crm-service/internal/domain/websocket"
	"crm-service/internal/service/xilnex"

	"go.uber.org/zap"
)

const DefaultResyncLimit = 50

// ResyncSummary reports one batch resync run.
type ResyncSummary struct {
	Attempted int                  `json:"attempted"`
	Synced    int                  `json:"synced"`
	Failed    int                  `json:"failed"`
	Results   []xilnex.BatchResult `json:"results"`
}

// ResyncPending pushes pending and failed customers to Xilnex in batches and
// records each outcome. With the integration disabled nothing is written.
func (s *CustomerService) ResyncPending(ctx context.Context, limit, batchSize int) (*ResyncSummary, error) {
	if limit <= 0 {
		limit = DefaultResyncLimit
	}

	candidates, err := s.repo.ListUnsynced(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load unsynced customers: %w", err)
	}

	results := s.syncer.BatchSyncContacts(ctx, candidates, batchSize)
	summary := &ResyncSummary{Attempted: len(results), Results: results}

	byID := make(map[string]*customer.Customer, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	for _, r := range results {
		c, ok := byID[r.CustomerID]
		if !ok || r.Result == nil || r.Result.Skipped {
			continue
		}

		switch {
		case r.Result.Success && r.Result.ClientID != "":
			c.MarkSynced(r.Result.ClientID, s.now())
			summary.Synced++
		case r.Result.Success:
			// nothing new learned; keep the current state
			continue
		default:
			c.MarkSyncFailed(r.Result.Error)
			summary.Failed++
		}

		if err := s.repo.UpdateSyncState(ctx, c); err != nil {
			s.logger.Error("failed to record sync state",
				zap.String("customer_id", c.ID),
				zap.String("sync_status", string(c.SyncStatus)),
				zap.Error(err),
			)
		}
	}

	if summary.Attempted > 0 {
		s.logger.Info("batch resync finished",
			zap.Int("attempted", summary.Attempted),
			zap.Int("synced", summary.Synced),
			zap.Int("failed", summary.Failed),
		)
		s.publish(wsdomain.EventTypeBatchSynced, wsdomain.BatchSyncedData{
			Attempted: summary.Attempted,
			Synced:    summary.Synced,
			Failed:    summary.Failed,
		})
	}

	return summary, nil
}
