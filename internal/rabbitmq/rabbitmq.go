package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName     = "portfolio.direct"
	NotifyQueueName  = "notify.process"
	RoutingKeyNotify = "notify"
	ReconnectDelay   = 5 * time.Second
)

// Event kinds carried on the notify queue
const (
	EventGuestbookEntry = "guestbook_entry"
	EventContactMessage = "contact_message"
)

// NotifyEvent is the JSON payload published for new guestbook entries and
// contact messages. Contact content stays encrypted in the DB; the event
// carries only the plain summary fields needed to compose a notification.
type NotifyEvent struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Subject string `json:"subject,omitempty"`
	Preview string `json:"preview,omitempty"`
}

type RabbitMQClient struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	URL     string
}

var Client *RabbitMQClient

// SetupRabbitMQ initializes the connection and declares the topology
func SetupRabbitMQ(url string) error {
	Client = &RabbitMQClient{
		URL: url,
	}
	return Client.connect()
}

func (c *RabbitMQClient) connect() error {
	var err error

	log.Printf("Attempting to connect to RabbitMQ...")
	c.Conn, err = amqp.Dial(c.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	c.Channel, err = c.Conn.Channel()
	if err != nil {
		c.Conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := c.declareTopology(); err != nil {
		c.Channel.Close()
		c.Conn.Close()
		return err
	}

	// Watch for errors in background
	go c.watchConnection()

	log.Println("RabbitMQ connected successfully")
	return nil
}

func (c *RabbitMQClient) declareTopology() error {
	err := c.Channel.ExchangeDeclare(
		ExchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = c.Channel.QueueDeclare(
		NotifyQueueName, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare notify queue: %w", err)
	}

	err = c.Channel.QueueBind(
		NotifyQueueName,  // queue name
		RoutingKeyNotify, // routing key
		ExchangeName,     // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind notify queue: %w", err)
	}

	return nil
}

func (c *RabbitMQClient) watchConnection() {
	notifyClose := c.Conn.NotifyClose(make(chan *amqp.Error))

	if err := <-notifyClose; err != nil {
		log.Printf("RabbitMQ connection closed: %v. Reconnecting...", err)
		c.reconnect()
	}
}

func (c *RabbitMQClient) reconnect() {
	for {
		time.Sleep(ReconnectDelay)
		if err := c.connect(); err == nil {
			log.Println("RabbitMQ reconnected")
			return
		} else {
			log.Printf("Failed to reconnect to RabbitMQ: %v. Retrying in %v...", err, ReconnectDelay)
		}
	}
}

// Close closes the connection and channel
func Close() {
	if Client != nil {
		if Client.Channel != nil {
			Client.Channel.Close()
		}
		if Client.Conn != nil {
			Client.Conn.Close()
		}
	}
}

// PublishNotifyEvent publishes a notification event to the notify queue.
// Best-effort: callers log the error and carry on, a lost notification must
// never fail the originating request.
func PublishNotifyEvent(event NotifyEvent) error {
	if Client == nil || Client.Channel == nil || Client.Channel.IsClosed() {
		return fmt.Errorf("RabbitMQ client not (yet) connected")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = Client.Channel.Publish(
		ExchangeName,     // exchange
		RoutingKeyNotify, // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}
