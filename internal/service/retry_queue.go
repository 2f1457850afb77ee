package service

import (
	"fmt"

	"affiliate-settlement-api/internal/dal"
)

// Redis set of affiliate ids that have company-paid commissions waiting on a
// verified payout account or a recovered transfer failure. The sweep drains it.
const disburseRetrySet = "disburse_retry_affiliates"

type retryQueue interface {
	Add(affiliateID uint64) error
	Remove(affiliateID uint64)
	Members() ([]uint64, error)
}

// redisRetryQueue keeps the retry set in Redis so it survives restarts and is
// shared across instances.
type redisRetryQueue struct{}

func (redisRetryQueue) Add(affiliateID uint64) error {
	return dal.RedisClient.SAdd(dal.RedisCtx, disburseRetrySet, affiliateID).Err()
}

func (redisRetryQueue) Remove(affiliateID uint64) {
	dal.RedisClient.SRem(dal.RedisCtx, disburseRetrySet, affiliateID)
}

func (redisRetryQueue) Members() ([]uint64, error) {
	raw, err := dal.RedisClient.SMembers(dal.RedisCtx, disburseRetrySet).Result()
	if err != nil {
		return nil, err
	}
	out := make([]uint64, 0, len(raw))
	for _, s := range raw {
		var id uint64
		if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
