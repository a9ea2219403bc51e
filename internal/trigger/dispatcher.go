package trigger

import (
	"context"

	"github.com/sharath018/church-notification-backend/metrics"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, ev ChangeEvent) error

type route struct {
	resource string
	change   ChangeType
}

// Dispatcher routes change events to handlers by resource and change type.
type Dispatcher struct {
	routes map[route]HandlerFunc
	logger *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		routes: make(map[route]HandlerFunc),
		logger: logger.Named("trigger"),
	}
}

// Handle registers h for resource and every listed change type.
func (d *Dispatcher) Handle(resource string, h HandlerFunc, changes ...ChangeType) {
	for _, c := range changes {
		d.routes[route{resource, c}] = h
	}
}

// Dispatch runs the handler for ev. Unrouted events are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, ev ChangeEvent) error {
	if err := ev.Validate(); err != nil {
		metrics.ChangeEventsTotal.WithLabelValues(ev.Resource, string(ev.ChangeType), "invalid").Inc()
		return err
	}

	h, ok := d.routes[route{ev.Resource, ev.ChangeType}]
	if !ok {
		metrics.ChangeEventsTotal.WithLabelValues(ev.Resource, string(ev.ChangeType), "ignored").Inc()
		d.logger.Debug("no handler for change",
			zap.String("resource", ev.Resource),
			zap.String("change", string(ev.ChangeType)),
		)
		return nil
	}

	if err := h(ctx, ev); err != nil {
		metrics.ChangeEventsTotal.WithLabelValues(ev.Resource, string(ev.ChangeType), "error").Inc()
		return err
	}
	metrics.ChangeEventsTotal.WithLabelValues(ev.Resource, string(ev.ChangeType), "ok").Inc()
	return nil
}
