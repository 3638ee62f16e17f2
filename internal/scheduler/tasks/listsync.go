package tasks

import (
	"context"

	"github.com/slipstream/couchlist/internal/config"
	"github.com/slipstream/couchlist/internal/listsync"
	"github.com/slipstream/couchlist/internal/scheduler"
)

const ListSyncTaskID = "list-sync"

// Syncer runs a sync of every configured source.
type Syncer interface {
	SyncAll(ctx context.Context) ([]listsync.Report, error)
}

// RegisterListSyncTask registers the CouchPotato list sync with the scheduler.
func RegisterListSyncTask(sched *scheduler.Scheduler, syncer Syncer, cfg *config.SyncConfig) error {
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = config.DefaultSyncCron
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          ListSyncTaskID,
		Name:        "List Sync",
		Description: "Fetch the wanted list of every CouchPotato source and store it",
		Cron:        cronExpr,
		RunOnStart:  cfg.RunOnStart,
		Func: func(ctx context.Context) error {
			_, err := syncer.SyncAll(ctx)
			return err
		},
	})
}
