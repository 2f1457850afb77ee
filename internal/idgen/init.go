package idgen

import (
	"log"
	"os"
	"strconv"
)

// Init initializes the default node. SNOWFLAKE_NODE_ID overrides the given id
// for multi-instance deployments.
func Init(nodeID int64) {
	if s := os.Getenv("SNOWFLAKE_NODE_ID"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id < 0 || id > 1023 {
			log.Fatalf("[IDGen] invalid SNOWFLAKE_NODE_ID: %v", s)
		}
		nodeID = id
	}
	if err := InitNode("default", nodeID); err != nil {
		log.Fatalf("[IDGen] InitNode failed: %v", err)
	}
}
