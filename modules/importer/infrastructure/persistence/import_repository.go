package persistence

import (
	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgtype"

	"context"

	"github.com/unionhall/leavehub/modules/importer/staged"
	"github.com/unionhall/leavehub/pkg/composables"
)

var ErrChangeConflict = gerrors.New("queued change no longer matches the stored request")

// PgImportRepository applies reconciliation decisions to persisted leave
// requests. Updates are conditional on the status the admin reviewed, so a
// request that moved underneath the session aborts the commit instead of
// being overwritten.
type PgImportRepository struct{}

func NewImportRepository() *PgImportRepository {
	return &PgImportRepository{}
}

func (r *PgImportRepository) ApplyQueuedChange(ctx context.Context, change staged.QueuedChange) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	var reason pgtype.Text
	if change.AdminReason != "" {
		reason = pgtype.Text{String: change.AdminReason, Valid: true}
	}

	tag, err := tx.Exec(ctx, `
UPDATE leave_requests
SET status = $1,
    admin_reason = COALESCE($2, admin_reason),
    waitlist_position = CASE WHEN $1 <> 'waitlisted' THEN NULL ELSE waitlist_position END,
    updated_at = now()
WHERE id = $3 AND status = $4
`,
		string(change.NewStatus),
		reason,
		pgUUID(change.RequestID),
		string(change.CurrentStatus),
	)
	if err != nil {
		return gerrors.Wrap(err, "applying queued change")
	}
	if tag.RowsAffected() == 0 {
		return ErrChangeConflict
	}
	return nil
}

func (r *PgImportRepository) ApplyQueuedChanges(ctx context.Context, changes []staged.QueuedChange) error {
	for _, change := range changes {
		if err := r.ApplyQueuedChange(ctx, change); err != nil {
			return err
		}
	}
	return nil
}
