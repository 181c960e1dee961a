package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/boscod/portfolio-api/internal/rabbitmq"
	"github.com/boscod/portfolio-api/internal/services"
	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "notify-worker-1"

// NotifyWorker consumes guestbook/contact events from the notify queue and
// dispatches email and Telegram notifications to the site owner.
type NotifyWorker struct {
	emailService    *services.EmailService
	telegramService *services.TelegramService
}

func NewNotifyWorker(es *services.EmailService, ts *services.TelegramService) *NotifyWorker {
	return &NotifyWorker{
		emailService:    es,
		telegramService: ts,
	}
}

// StartWorker starts the consumer process
// ctx is used for graceful shutdown signal
func (w *NotifyWorker) StartWorker(ctx context.Context) error {
	if rabbitmq.Client == nil {
		return fmt.Errorf("RabbitMQ client not initialized")
	}

	ch := rabbitmq.Client.Channel
	qName := rabbitmq.NotifyQueueName

	msgs, err := ch.Consume(
		qName,       // queue
		consumerTag, // consumer tag
		false,       // auto-ack (manual ack after successful process)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf("Notify worker started, waiting for messages in %s", qName)

	go func() {
		for d := range msgs {
			w.processMessage(d)
		}
	}()

	// Wait for context cancellation (graceful shutdown)
	<-ctx.Done()
	log.Println("Shutdown signal received, canceling notify consumer")

	if err := ch.Cancel(consumerTag, false); err != nil {
		log.Printf("Error canceling consumer: %v", err)
	}

	return nil
}

func (w *NotifyWorker) processMessage(d amqp.Delivery) {
	var event rabbitmq.NotifyEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Printf("[NotifyWorker] Invalid event payload, discarding: %v", err)
		d.Reject(false)
		return
	}

	var title, body string
	switch event.Kind {
	case rabbitmq.EventGuestbookEntry:
		title = fmt.Sprintf("New guestbook entry from %s", event.Name)
		body = event.Preview
	case rabbitmq.EventContactMessage:
		title = fmt.Sprintf("New contact message from %s", event.Name)
		if event.Subject != "" {
			body = event.Subject
		} else {
			body = event.Preview
		}
	default:
		log.Printf("[NotifyWorker] Unknown event kind %q, discarding", event.Kind)
		d.Ack(false)
		return
	}

	// Both channels are best-effort. A delivery failure is logged, not
	// requeued: the entry itself is already persisted.
	if w.telegramService != nil && w.telegramService.Configured() {
		if err := w.telegramService.SendMessage(fmt.Sprintf("📬 %s\n%s", title, body)); err != nil {
			log.Printf("[NotifyWorker] Telegram dispatch failed: %v", err)
		}
	}

	if owner := os.Getenv("NOTIFY_EMAIL_TO"); owner != "" && w.emailService != nil {
		if err := w.emailService.SendEmail([]string{owner}, title, body); err != nil {
			log.Printf("[NotifyWorker] Email dispatch failed: %v", err)
		}
	}

	d.Ack(false)
}
