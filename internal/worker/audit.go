// Package worker carries the async audit sink: a Redis-list queue consumed
// by a small BRPOP goroutine pool. The core emits one event per register
// state transition and per confirmed discount application, and never waits
// for delivery.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueAudit = "jobs:audit"

// AuditEvent mirrors the audit collaborator contract: action, entity, and
// optional old/new value snapshots.
type AuditEvent struct {
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id,omitempty"`
	OperatorID string                 `json:"operator_id,omitempty"`
	OldValues  map[string]interface{} `json:"old_values,omitempty"`
	NewValues  map[string]interface{} `json:"new_values,omitempty"`
	Reason     string                 `json:"reason,omitempty"`
	At         time.Time              `json:"at"`
}

// AuditDispatcher enqueues audit events. Enqueue failures are logged and
// swallowed: auditing must never fail a sale.
type AuditDispatcher struct {
	rdb *redis.Client
}

func NewAuditDispatcher(rdb *redis.Client) *AuditDispatcher {
	return &AuditDispatcher{rdb: rdb}
}

// Log enqueues the event best-effort. Safe on a nil dispatcher (tests run
// without Redis).
func (d *AuditDispatcher) Log(ctx context.Context, ev AuditEvent) {
	if d == nil || d.rdb == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	encoded, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("action", ev.Action).Msg("audit event marshal failed")
		return
	}
	if err := d.rdb.LPush(ctx, QueueAudit, encoded).Err(); err != nil {
		log.Warn().Err(err).Str("action", ev.Action).Msg("audit event enqueue failed")
	}
}

// StartWorkerPool launches numWorkers goroutines consuming the audit
// queue. Each blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i)
	}
	log.Info().Msgf("audit worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("audit worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueAudit).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			deliver(result[1])
		}
	}
}

// deliver hands the event to the audit backend. The backend here is the
// structured log stream; swapping in a remote sink only changes this
// function.
func deliver(raw string) {
	var ev AuditEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		log.Error().Err(err).Msg("audit event unmarshal failed")
		return
	}
	log.Info().
		Str("action", ev.Action).
		Str("entity_type", ev.EntityType).
		Str("entity_id", ev.EntityID).
		Str("operator_id", ev.OperatorID).
		Str("reason", ev.Reason).
		Interface("old", ev.OldValues).
		Interface("new", ev.NewValues).
		Time("at", ev.At).
		Msg("audit")
}
