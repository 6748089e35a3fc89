// Package notify delivers the run summary out of band.
//
// Delivery is best effort: the CSV is already on disk when a notifier runs,
// so callers log a Send error instead of failing the run.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Message is one run summary with optional file attachments.
type Message struct {
	Subject     string
	Body        string
	Attachments []string
}

type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Nop drops every message.
type Nop struct{}

func (Nop) Name() string { return "nop" }

func (Nop) Send(context.Context, Message) error { return nil }

// Fanout sends to every notifier, even after one fails.
type Fanout []Notifier

func (f Fanout) Name() string { return "fanout" }

func (f Fanout) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range f {
		if err := n.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Combine returns the notifiers as one; none yields Nop.
func Combine(ns ...Notifier) Notifier {
	switch len(ns) {
	case 0:
		return Nop{}
	case 1:
		return ns[0]
	default:
		return Fanout(ns)
	}
}
