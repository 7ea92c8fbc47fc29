package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func createTable(ctx context.Context, db *bun.DB, model interface{}) error {
	_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
	return err
}

func createIndex(ctx context.Context, db *bun.DB, name string, model interface{}, unique bool, cols ...string) error {
	q := db.NewCreateIndex().Model(model).IfNotExists().Index(name).Column(cols...)
	if unique {
		q = q.Unique()
	}
	_, err := q.Exec(ctx)
	return err
}

// initDB creates every table and index this store needs, all
// idempotently (CREATE TABLE/INDEX IF NOT EXISTS), so it is safe to
// call on every process start.
func initDB(ctx context.Context, db *bun.DB) error {
	if err := createTable(ctx, db, (*jobModel)(nil)); err != nil {
		return fmt.Errorf("store: create jobs table: %w", err)
	}
	if err := createTable(ctx, db, (*agentModel)(nil)); err != nil {
		return fmt.Errorf("store: create agents table: %w", err)
	}
	if err := createTable(ctx, db, (*assignmentModel)(nil)); err != nil {
		return fmt.Errorf("store: create assignments table: %w", err)
	}

	if err := createIndex(ctx, db, "jobs_status_v_exec_shots_idx", (*jobModel)(nil), false, "status", "v_exec_shots"); err != nil {
		return fmt.Errorf("store: create jobs status index: %w", err)
	}
	if err := createIndex(ctx, db, "agents_ip_port_idx", (*agentModel)(nil), true, "ip", "port"); err != nil {
		return fmt.Errorf("store: create agents address index: %w", err)
	}
	if err := createIndex(ctx, db, "agents_status_qubit_idle_idx", (*agentModel)(nil), false, "status", "qubit_idle", "circuit_depth"); err != nil {
		return fmt.Errorf("store: create agents eligibility index: %w", err)
	}
	if err := createIndex(ctx, db, "assignments_job_id_idx", (*assignmentModel)(nil), false, "job_id"); err != nil {
		return fmt.Errorf("store: create assignments job index: %w", err)
	}
	if err := createIndex(ctx, db, "assignments_agent_id_idx", (*assignmentModel)(nil), false, "agent_id"); err != nil {
		return fmt.Errorf("store: create assignments agent index: %w", err)
	}
	if err := createIndex(ctx, db, "assignments_status_idx", (*assignmentModel)(nil), false, "status"); err != nil {
		return fmt.Errorf("store: create assignments status index: %w", err)
	}
	return nil
}

// InitDB runs schema bootstrap against db. Safe to call repeatedly.
func InitDB(ctx context.Context, db *bun.DB) error {
	return initDB(ctx, db)
}

// MustInitDB is InitDB, panicking on error. Intended for process
// startup where a schema failure is fatal.
func MustInitDB(ctx context.Context, db *bun.DB) {
	if err := InitDB(ctx, db); err != nil {
		panic(err)
	}
}
