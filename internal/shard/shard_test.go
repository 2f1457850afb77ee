package shard

import (
	"testing"
	"time"
)

func TestCRC32Strategy(t *testing.T) {
	strategy := NewCRC32Strategy(4)
	id := uint64(123456789)
	shard := strategy.GetShard(id)
	if shard < 0 || shard >= 4 {
		t.Errorf("shard out of range: %d", shard)
	}
}

func TestEngine_GetTable(t *testing.T) {
	engine := NewEngine("s_audit_log", 4)
	id := uint64(987654321)
	timestamp := time.Date(2026, 8, 12, 12, 0, 0, 0, time.Local)
	table := engine.GetTable(id, timestamp)

	expectedPrefix := "s_audit_log_202608_p"
	if len(table) < len(expectedPrefix) || table[:len(expectedPrefix)] != expectedPrefix {
		t.Errorf("unexpected table name: %s", table)
	}
}

func TestEngine_AllTables(t *testing.T) {
	engine := NewEngine("s_audit_log", 3)
	tables := engine.AllTables(time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local))
	if len(tables) != 3 {
		t.Fatalf("want 3 tables, got %d", len(tables))
	}
	if tables[0] != "s_audit_log_202608_p0" {
		t.Errorf("unexpected first table: %s", tables[0])
	}
}
