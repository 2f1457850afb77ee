package idgen

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

var nodeMap sync.Map // map[string]*snowflake.Node

// InitNode registers a named snowflake node. Separate names let commission,
// batch and payout ids come from distinct sequences in multi-instance setups.
func InitNode(name string, nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("InitNode failed: %w", err)
	}
	nodeMap.Store(name, n)
	return nil
}

func NewFrom(name string) uint64 {
	val, ok := nodeMap.Load(name)
	if !ok {
		panic(fmt.Sprintf("snowflake node not initialized: %s", name))
	}
	return uint64(val.(*snowflake.Node).Generate().Int64())
}

// New generates an id from the "default" node.
func New() uint64 {
	return NewFrom("default")
}

// CheckSystemClock watches for the wall clock moving backward. Snowflake ids
// embed the timestamp, so a regression would hand out duplicate ids; dying is
// safer than minting them. Run it in its own goroutine.
func CheckSystemClock() {
	last := time.Now().UnixMilli()
	ticker := time.NewTicker(time.Second)
	for now := range ticker.C {
		current := now.UnixMilli()
		if current < last {
			log.Fatalf("[IDGen] System clock moved backward: last=%d, now=%d", last, current)
		}
		last = current
	}
}
