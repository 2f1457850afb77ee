package dao

import (
	"log"
	"sort"
	"time"

	"affiliate-settlement-api/internal/config"
	"affiliate-settlement-api/internal/dal"
	"affiliate-settlement-api/internal/idgen"
	ledgermodel "affiliate-settlement-api/internal/model/ledger"
	"affiliate-settlement-api/internal/shard"
)

// AuditDao writes state-transition records to monthly sharded tables.
// Writes are fire-and-forget: an audit failure must never fail the
// transition it describes.
type AuditDao struct {
	engine *shard.Engine
}

func NewAuditDao() *AuditDao {
	return &AuditDao{
		engine: shard.NewEngine("s_audit_log", uint32(config.C.Settlement.AuditShards)),
	}
}

func (r *AuditDao) Write(entityType string, entityID uint64, eventID, from, to, note, traceID string) {
	entry := ledgermodel.AuditLog{
		AuditID:    idgen.New(),
		EntityType: entityType,
		EntityID:   entityID,
		EventID:    eventID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		TraceID:    traceID,
		CreateTime: time.Now(),
	}
	table := r.engine.GetTable(entityID, entry.CreateTime)

	go func(entry ledgermodel.AuditLog, tableName string) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[AUDIT] goroutine panic: trace_id=%s, err=%v", entry.TraceID, rec)
			}
		}()
		if err := dal.LedgerDB.Table(tableName).Create(&entry).Error; err != nil {
			log.Printf("[AUDIT] write failed: table=%s, trace_id=%s, err=%v", tableName, entry.TraceID, err)
		}
	}(entry, table)
}

// ListMonth reads audit rows for the given month. With an entity id it hits
// that entity's shard only; with entityID 0 it scans every shard of the month
// for a full trail.
func (r *AuditDao) ListMonth(entityID uint64, month time.Time) ([]ledgermodel.AuditLog, error) {
	tables := r.engine.AllTables(month)
	if entityID != 0 {
		tables = []string{r.engine.GetTable(entityID, month)}
	}
	var out []ledgermodel.AuditLog
	for _, table := range tables {
		var rows []ledgermodel.AuditLog
		q := dal.LedgerDB.Table(table)
		if entityID != 0 {
			q = q.Where("entity_id = ?", entityID)
		}
		if err := q.Order("audit_id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	// shard scans interleave; snowflake ids sort by creation time
	sort.Slice(out, func(i, j int) bool { return out[i].AuditID < out[j].AuditID })
	return out, nil
}
