package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/lguillozl/ecommerce-api/internal/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Router runs one consumer goroutine per registered queue on a shared
// AMQP channel.
type Router struct {
	ch            *amqp.Channel
	log           *slog.Logger
	prefetch      int
	callTimeout   time.Duration
	requeueOnErr  bool
	registrations []registration
}

type registration struct {
	queueName   string
	handler     Handler
	consumerTag string
}

type RouterOption func(*Router)

func WithPrefetch(n int) RouterOption          { return func(r *Router) { r.prefetch = n } }
func WithTimeout(d time.Duration) RouterOption { return func(r *Router) { r.callTimeout = d } }
func WithRequeue(b bool) RouterOption          { return func(r *Router) { r.requeueOnErr = b } }

func NewRouter(ch *amqp.Channel, opts ...RouterOption) *Router {
	r := &Router{
		ch:           ch,
		log:          logging.New("rmq-router"),
		prefetch:     50,
		callTimeout:  10 * time.Second,
		requeueOnErr: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register associates a queue with a handler; call once per queue
// before Start.
func (r *Router) Register(queueName string, h Handler) {
	r.registrations = append(r.registrations, registration{
		queueName:   queueName,
		handler:     h,
		consumerTag: "c_" + queueName,
	})
}

// Start begins consuming; non-blocking. Prefetch is per-channel and
// applies to all consumers registered here.
func (r *Router) Start() error {
	if err := r.ch.Qos(r.prefetch, 0, false); err != nil {
		return err
	}

	for _, reg := range r.registrations {
		deliveries, err := r.ch.Consume(
			reg.queueName,
			reg.consumerTag,
			false, // manual ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return err
		}
		go r.consume(reg, deliveries)
	}
	return nil
}

func (r *Router) consume(reg registration, msgs <-chan amqp.Delivery) {
	for d := range msgs {
		ctx, cancel := context.WithTimeout(context.Background(), r.callTimeout)
		err := reg.handler.Handle(ctx, d)
		cancel()

		if err != nil {
			r.log.Error("handler error",
				"queue", reg.queueName, "routing_key", d.RoutingKey,
				"err", err, "requeue", r.requeueOnErr)
			_ = d.Nack(false, r.requeueOnErr)
			continue
		}
		_ = d.Ack(false)
	}
	r.log.Info("consumer stopped", "queue", reg.queueName)
}
