// Package cloudsync pushes weekly totals to a remote per-user document store
// and reads them back on sign-in.
package cloudsync

import (
	"context"
	"fmt"

	"HabitSentinel/internal/model"
)

// Document field names.
const (
	FieldWeekStart   = "weekStart"
	FieldWaterTotals = "waterTotalsML"
	FieldSleepHours  = "sleepHours"
)

// Fields is a partial document update.
type Fields map[string]any

// Remote stores one document per (user, week).
type Remote interface {
	// SetFields merges fields into the document; fields not sent are kept.
	SetFields(ctx context.Context, uid, week string, fields Fields) error
	// GetDocument returns nil, nil when the document does not exist.
	GetDocument(ctx context.Context, uid, week string) (*model.WeekDocument, error)
}

// DocumentPath is the remote path of the week document.
func DocumentPath(uid, week string) string {
	return fmt.Sprintf("users/%s/weeks/%s", uid, week)
}
