package schedulingService

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaomaimax/mes-system-sub006/internal/cronjob"
	"github.com/xiaomaimax/mes-system-sub006/internal/db"
)

func init() {
	cronjob.RegisterJob("scheduling-nightly-run", RunSchedulingCron, `0 2 * * *`)
}

// RunScheduling executes one allocator pass over the unscheduled/blocked
// backlog and reports what got scheduled and what stayed blocked.
func RunScheduling(c *gin.Context, jsonPayload string) (interface{}, error) {
	req := RunRequest{}
	if jsonPayload != "" {
		if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
			return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
		}
	}

	sqlxDB, err := db.ConnectSqlx(`mes_portal`)
	if err != nil {
		return nil, err
	}
	defer sqlxDB.Close()

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		return nil, err
	}

	snapshot, err := loadRunSnapshot(sqlxDB)
	if err != nil {
		return nil, err
	}

	allocator := &Allocator{
		Catalog:  snapshot.catalog,
		Ledger:   snapshot.ledger,
		Tracker:  snapshot.tracker,
		Resolver: NewConstraintResolver(snapshot.ledger, snapshot.bindings),
		Ranker:   NewPreferenceRanker(snapshot.tracker),
		Sink:     NewTaskEmitter(gormDB),
		Now:      time.Now(),
		MaxPlans: req.MaxPlans,
	}

	summary, err := allocator.Run(c.Request.Context(), snapshot.plans)
	if err != nil {
		return nil, err
	}

	log.Printf("scheduling: run %s scheduled %d plans, blocked %d\n",
		summary.RunID, len(summary.Scheduled), len(summary.Blocked))

	return summary, nil
}

func RunSchedulingCron() {
	sqlxDB, err := db.ConnectSqlx(`mes_portal`)
	if err != nil {
		log.Println("scheduling: cron run skipped:", err)
		return
	}
	defer sqlxDB.Close()

	gormDB, err := db.ConnectGORM(`mes_portal`)
	if err != nil {
		log.Println("scheduling: cron run skipped:", err)
		return
	}

	snapshot, err := loadRunSnapshot(sqlxDB)
	if err != nil {
		log.Println("scheduling: cron snapshot failed:", err)
		return
	}

	allocator := &Allocator{
		Catalog:  snapshot.catalog,
		Ledger:   snapshot.ledger,
		Tracker:  snapshot.tracker,
		Resolver: NewConstraintResolver(snapshot.ledger, snapshot.bindings),
		Ranker:   NewPreferenceRanker(snapshot.tracker),
		Sink:     NewTaskEmitter(gormDB),
		Now:      time.Now(),
	}

	summary, err := allocator.Run(context.Background(), snapshot.plans)
	if err != nil {
		log.Println("scheduling: cron run failed:", err)
		return
	}

	log.Printf("scheduling: cron run %s scheduled %d plans, blocked %d\n",
		summary.RunID, len(summary.Scheduled), len(summary.Blocked))
}
