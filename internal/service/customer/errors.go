// internal/service/customer/errors.go
package customer

import (
	"sort"
	"strings"

	xerrors "crm-service/internal/pkg/errors"
	"crm-service/internal/service/xilnex"
)

// ErrCreationInProgress is returned while another request holds the creation
// lock for the same email.
var ErrCreationInProgress = xerrors.Tag(xerrors.ErrConflict, "a customer with this email is already being created")

// ValidationError lists the offending fields and their messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// SyncError means the external system rejected the customer and nothing was
// stored locally.
type SyncError struct {
	Result *xilnex.Result
}

func (e *SyncError) Error() string {
	if e.Result == nil || e.Result.Error == "" {
		return "xilnex sync failed"
	}
	return "xilnex sync failed: " + e.Result.Error
}
