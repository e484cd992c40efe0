// Package broker defines the topic-exchange style messaging contract the service
// consumes item notifications through. Transports live in subpackages.
package broker

import (
	"context"
	"errors"
	"strings"

	"pagesync/internal/domain"
)

var (
	ErrClosed         = errors.New("broker: closed")
	ErrInvalidBinding = errors.New("broker: invalid binding")
)

// Binding attaches a durable queue to an exchange for a set of routing key patterns.
// Patterns follow topic-exchange rules: words are dot separated, "*" matches exactly
// one word and "#" matches zero or more words.
type Binding struct {
	Queue       string
	Exchange    string
	RoutingKeys []string
}

func (b Binding) Validate() error {
	if b.Queue == "" || b.Exchange == "" || len(b.RoutingKeys) == 0 {
		return ErrInvalidBinding
	}
	for _, k := range b.RoutingKeys {
		if k == "" {
			return ErrInvalidBinding
		}
	}
	return nil
}

// Matches reports whether routingKey is selected by any of the binding's patterns.
func (b Binding) Matches(routingKey string) bool {
	for _, p := range b.RoutingKeys {
		if MatchRoutingKey(p, routingKey) {
			return true
		}
	}
	return false
}

type Delivery struct {
	MessageID  string
	Exchange   string
	RoutingKey string
	Payload    []byte
	// Attempt starts at 1 and grows with every redelivery of the same message.
	Attempt int
}

// Handler processes one delivery. Returning nil acknowledges it; an error for which
// domain.IsPermanent is true drops it; any other error asks for redelivery.
type Handler func(ctx context.Context, d Delivery) error

type Subscriber interface {
	// Subscribe starts consuming in the background and returns once the binding is active.
	Subscribe(ctx context.Context, b Binding, h Handler) error
	Close() error
}

type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, payload []byte) error
}

type Broker interface {
	Subscriber
	Publisher
}

type Disposition int

const (
	Ack Disposition = iota
	Retry
	Drop
)

func (d Disposition) String() string {
	switch d {
	case Ack:
		return "ack"
	case Retry:
		return "retry"
	case Drop:
		return "drop"
	}
	return "unknown"
}

func Classify(err error) Disposition {
	switch {
	case err == nil:
		return Ack
	case domain.IsPermanent(err):
		return Drop
	default:
		return Retry
	}
}

func MatchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(p, k []string) bool {
	for len(p) > 0 {
		switch p[0] {
		case "#":
			if len(p) == 1 {
				return true
			}
			for i := 0; i <= len(k); i++ {
				if matchWords(p[1:], k[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(k) == 0 {
				return false
			}
		default:
			if len(k) == 0 || p[0] != k[0] {
				return false
			}
		}
		p, k = p[1:], k[1:]
	}
	return len(k) == 0
}
