package mq

import (
	"affiliate-settlement-api/internal/callback"
	"affiliate-settlement-api/internal/dal"
)

// StartConsumers launches one consumer per event queue, all feeding the
// reconciler's type dispatch.
func StartConsumers(rec *callback.Reconciler) {
	go StartConsumer(dal.QueueChargeEvents, eventHandler(dal.QueueChargeEvents, rec.Handle))
	go StartConsumer(dal.QueueTransferEvent, eventHandler(dal.QueueTransferEvent, rec.Handle))
	go StartConsumer(dal.QueueAccountEvents, eventHandler(dal.QueueAccountEvents, rec.Handle))
}
