package instrument

import (
	"sync"
	"time"

	"github.com/bymeisam/use/pkg/events"
)

// Source wraps src so that every handler invocation is counted and timed.
// Handler panics are counted and then re-raised, leaving the underlying
// source's recovery behavior intact.
func (m *Metrics) Source(src events.Source) events.Source {
	return &metricsSource{m: m, src: src}
}

type metricsSource struct {
	m   *Metrics
	src events.Source
}

func (s *metricsSource) Subscribe(name string, h events.Handler) func() {
	s.m.subscriptionsActive.Inc()

	cancel := s.src.Subscribe(name, func(e events.Event) {
		start := time.Now()
		defer func() {
			r := recover()

			status := "ok"
			if r != nil {
				status = "panic"
				s.m.handlerPanics.WithLabelValues(e.Name).Inc()
			}
			s.m.eventDuration.WithLabelValues(e.Name).Observe(time.Since(start).Seconds())
			s.m.eventsTotal.WithLabelValues(e.Name, status).Inc()

			if r != nil {
				panic(r)
			}
		}()

		h(e)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.m.subscriptionsActive.Dec()
		})
		cancel()
	}
}
