package event

// Publisher decouples event producers (webhook intake) from the broker so
// handlers can be tested without a live channel.
type Publisher interface {
	Publish(routingKey string, msg any) error
}
