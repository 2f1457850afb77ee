package mq

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"

	"affiliate-settlement-api/internal/dal"
)

type Publisher struct{}

func NewPublisher() *Publisher { return &Publisher{} }

// Publish sends one persistent JSON message to the settlement exchange.
func (p *Publisher) Publish(routingKey string, msg any) error {
	if dal.RabbitCh == nil {
		return nil
	}
	b, _ := json.Marshal(msg)
	err := dal.RabbitCh.Publish(
		dal.ExchangeSettlement,
		routingKey,
		false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         b,
		},
	)
	if err != nil {
		log.Printf("publish %s failed: %v", routingKey, err)
	}
	return err
}
