// Package notifier delivers order-completion events in the background: web
// push to subscribed console browsers and a roster notification to the
// assigned technician.
package notifier

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"fieldops-console-backend/internal/roster"
	"fieldops-console-backend/internal/store"
)

// Event describes one work order state change worth announcing.
type Event struct {
	OrderID       int64
	Status        string
	MachineSerial string
	TechEmail     string
}

// PushSender sends one web push notification. Split out so tests can swap in
// a fake.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// webPushSender is the real implementation backed by the webpush library.
type webPushSender struct{}

func (s *webPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// RosterNotifier sends the technician-facing notification.
type RosterNotifier interface {
	Notify(ctx context.Context, n roster.Notification) error
}

// WorkerPool fans order events out to a fixed set of workers.
type WorkerPool struct {
	size    int
	jobs    chan Event
	subs    store.SubscriptionStore
	webpush *webpush.Options
	sender  PushSender
	roster  RosterNotifier
}

// NewWorkerPool creates a worker pool. roster may be nil when the roster API
// is not configured; push delivery still runs.
func NewWorkerPool(size int, subs store.SubscriptionStore, webpushOptions *webpush.Options, rosterClient RosterNotifier) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, size),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &webPushSender{},
		roster:  rosterClient,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notifier worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			wp.deliver(ctx, ev)
		case <-ctx.Done():
			log.Printf("notifier worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an event for delivery. A full queue drops the event instead
// of blocking the caller; notifications are best-effort.
func (wp *WorkerPool) Dispatch(ev Event) {
	select {
	case wp.jobs <- ev:
	default:
		log.Printf("notifier queue full, dropping event for order %d", ev.OrderID)
	}
}

func (wp *WorkerPool) deliver(ctx context.Context, ev Event) {
	label := ev.MachineSerial
	if label == "" {
		label = fmt.Sprintf("#%d", ev.OrderID)
	}
	message := fmt.Sprintf("Orden %s: %s", label, ev.Status)

	if wp.webpush != nil {
		for _, sub := range wp.subs.ForOrder(ev.OrderID) {
			wp.sendPush(sub, []byte(message))
		}
	}

	if wp.roster != nil && ev.TechEmail != "" {
		n := roster.Notification{
			Email:   ev.TechEmail,
			Subject: fmt.Sprintf("Orden de trabajo %s", label),
			Message: message,
		}
		if err := wp.roster.Notify(ctx, n); err != nil {
			log.Printf("roster notification for order %d failed: %v", ev.OrderID, err)
		}
	}
}

// sendPush sends one web push and drops the subscription when the push
// service reports it gone.
func (wp *WorkerPool) sendPush(sub store.Subscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("push to %s failed: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s expired, removing", sub.Endpoint)
		wp.subs.Delete(sub.Endpoint)
	}
}
