package dal

import (
	"log"

	"affiliate-settlement-api/internal/config"

	"github.com/streadway/amqp"
)

var RabbitConn *amqp.Connection
var RabbitCh *amqp.Channel

// Queue topology: one topic exchange, one queue per event family. The webhook
// handler publishes raw processor events; consumers drive the reconciler.
const (
	ExchangeSettlement = "settlement_events"
	QueueChargeEvents  = "charge_events"
	QueueTransferEvent = "transfer_events"
	QueueAccountEvents = "account_events"
)

func InitRabbitMQ() {
	url := config.C.RabbitMQ.URL
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Fatalf("rabbitmq dial failed: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbitmq channel failed: %v", err)
	}

	if err := ch.ExchangeDeclare(ExchangeSettlement, "topic", true, false, false, false, nil); err != nil {
		log.Fatalf("exchange declare failed: %v", err)
	}
	queues := map[string]string{
		QueueChargeEvents:  "charge.*",
		QueueTransferEvent: "transfer.*",
		QueueAccountEvents: "account.*",
	}
	for q, key := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			log.Fatalf("queue declare %s failed: %v", q, err)
		}
		if err := ch.QueueBind(q, key, ExchangeSettlement, false, nil); err != nil {
			log.Fatalf("queue bind %s failed: %v", q, err)
		}
	}

	RabbitConn = conn
	RabbitCh = ch
}
