package mq

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"

	"affiliate-settlement-api/internal/dal"
	"affiliate-settlement-api/internal/dto"
)

const maxRetry = 3

// StartConsumer attaches a handler to one queue; each delivery runs in its
// own goroutine.
func StartConsumer(queue string, handle func(amqp.Delivery)) {
	if dal.RabbitCh == nil {
		log.Println("RabbitMQ channel not initialized")
		return
	}
	msgs, err := dal.RabbitCh.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		log.Printf("❌ consume %s failed: %v", queue, err)
		return
	}
	log.Printf("[MQ] consumer started on %s", queue)
	for d := range msgs {
		go handle(d)
	}
}

// eventHandler wraps a reconciler dispatch with unmarshal, ack/nack and a
// bounded requeue via republish.
func eventHandler(queue string, dispatch func(*dto.EventEnvelope) error) func(amqp.Delivery) {
	return func(d amqp.Delivery) {
		var env dto.EventEnvelope
		if err := json.Unmarshal(d.Body, &env); err != nil {
			log.Printf("❌ [MQ] %s unmarshal failed: %v", queue, err)
			d.Nack(false, false)
			return
		}

		log.Printf("📨 [MQ] %s event: id=%s type=%s", queue, env.Event.EventID, env.Event.Type)

		if err := dispatch(&env); err != nil {
			log.Printf("❌ [MQ] %s handle failed: %v", queue, err)
			if env.RetryCount < maxRetry {
				env.RetryCount++
				retryBody, _ := json.Marshal(env)
				_ = dal.RabbitCh.Publish("", queue, false, false, amqp.Publishing{
					ContentType: "application/json",
					Body:        retryBody,
				})
				log.Printf("🔁 [MQ] retrying event %s (attempt %d)", env.Event.EventID, env.RetryCount)
			} else {
				log.Printf("🚨 [MQ] max retry reached for event %s", env.Event.EventID)
			}
			d.Nack(false, false)
			return
		}

		d.Ack(false)
	}
}
