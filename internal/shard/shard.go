// Package shard routes audit-log writes to monthly sharded tables so the
// append-heavy audit trail can be archived a month at a time.
package shard

import (
	"fmt"
	"hash/crc32"
	"log"
	"time"
)

type Strategy interface {
	GetShard(id uint64) int
}

// CRC32Strategy hashes the entity id across a fixed shard count.
type CRC32Strategy struct {
	ShardCount uint32
}

func NewCRC32Strategy(count uint32) *CRC32Strategy {
	return &CRC32Strategy{ShardCount: count}
}

func (s *CRC32Strategy) GetShard(id uint64) int {
	hash := crc32.ChecksumIEEE([]byte(fmt.Sprintf("%d", id)))
	return int(hash % s.ShardCount)
}

// Engine resolves the physical table for one logical table.
type Engine struct {
	BaseTable  string
	ShardCount uint32
	Strategy   Strategy
}

func NewEngine(base string, count uint32) *Engine {
	return &Engine{
		BaseTable:  base,
		ShardCount: count,
		Strategy:   NewCRC32Strategy(count),
	}
}

// GetTable returns a name like s_audit_log_202608_p2.
func (e *Engine) GetTable(id uint64, t time.Time) string {
	if t.IsZero() || t.Year() < 2000 {
		log.Printf("[Shard] invalid time %v, falling back to now", t)
		t = time.Now()
	}
	month := t.Format("200601")
	shard := e.Strategy.GetShard(id)
	return fmt.Sprintf("%s_%s_p%d", e.BaseTable, month, shard)
}

// AllTables lists every shard of the logical table for the given month.
func (e *Engine) AllTables(t time.Time) []string {
	month := t.Format("200601")
	out := make([]string, 0, e.ShardCount)
	for i := uint32(0); i < e.ShardCount; i++ {
		out = append(out, fmt.Sprintf("%s_%s_p%d", e.BaseTable, month, i))
	}
	return out
}
