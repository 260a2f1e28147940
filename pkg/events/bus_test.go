package events

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscribeReceivesMatchingEvents(t *testing.T) {
	bus := NewBus(discardLogger())

	var got []Event
	bus.Subscribe("click", func(e Event) {
		got = append(got, e)
	})

	bus.Emit(Event{Name: "click", Target: "save"})
	bus.Emit(Event{Name: "focus", Target: "search"})
	bus.Emit(Event{Name: "click", Target: "cancel"})

	if len(got) != 2 {
		t.Fatalf("expected 2 click events, got %d", len(got))
	}
	if got[0].Target != "save" || got[1].Target != "cancel" {
		t.Errorf("expected targets [save cancel], got [%s %s]", got[0].Target, got[1].Target)
	}
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	bus := NewBus(discardLogger())

	var order []string
	bus.Subscribe("click", func(Event) { order = append(order, "first") })
	bus.Subscribe("click", func(Event) { order = append(order, "second") })

	bus.Emit(Event{Name: "click"})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected [first second], got %v", order)
	}
}

func TestCancelRemovesHandler(t *testing.T) {
	bus := NewBus(discardLogger())

	calls := 0
	cancel := bus.Subscribe("click", func(Event) { calls++ })

	bus.Emit(Event{Name: "click"})
	cancel()
	bus.Emit(Event{Name: "click"})

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	// Idempotent.
	cancel()
	bus.Emit(Event{Name: "click"})
	if calls != 1 {
		t.Errorf("expected 1 call after repeated cancel, got %d", calls)
	}
}

func TestCancelOnlyRemovesOwnSubscription(t *testing.T) {
	bus := NewBus(discardLogger())

	first, second := 0, 0
	cancelFirst := bus.Subscribe("click", func(Event) { first++ })
	bus.Subscribe("click", func(Event) { second++ })

	cancelFirst()
	bus.Emit(Event{Name: "click"})

	if first != 0 {
		t.Errorf("expected cancelled handler not to run, got %d calls", first)
	}
	if second != 1 {
		t.Errorf("expected surviving handler to run once, got %d", second)
	}
}

func TestPanickingHandlerIsRecovered(t *testing.T) {
	bus := NewBus(discardLogger())

	ran := false
	bus.Subscribe("click", func(Event) { panic("boom") })
	bus.Subscribe("click", func(Event) { ran = true })

	bus.Emit(Event{Name: "click"})

	if !ran {
		t.Error("expected handler after the panicking one to still run")
	}
}

func TestEmitStampsTime(t *testing.T) {
	bus := NewBus(discardLogger())

	var got Event
	bus.Subscribe("click", func(e Event) { got = e })

	bus.Emit(Event{Name: "click"})
	if got.Time.IsZero() {
		t.Error("expected Emit to stamp an unset Time")
	}

	// A caller-supplied time is preserved.
	stamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	bus.Emit(Event{Name: "click", Time: stamp})
	if !got.Time.Equal(stamp) {
		t.Errorf("expected caller time preserved, got %v", got.Time)
	}
}

func TestHandlerCanSubscribeDuringEmit(t *testing.T) {
	bus := NewBus(discardLogger())

	late := 0
	bus.Subscribe("click", func(Event) {
		bus.Subscribe("click", func(Event) { late++ })
	})

	bus.Emit(Event{Name: "click"})
	if late != 0 {
		t.Errorf("handler subscribed mid-emit must not see the same event, got %d", late)
	}

	bus.Emit(Event{Name: "click"})
	if late != 1 {
		t.Errorf("expected late handler to see the next event once, got %d", late)
	}
}

func TestConcurrentEmitAndSubscribe(t *testing.T) {
	bus := NewBus(discardLogger())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				cancel := bus.Subscribe("click", func(Event) {})
				bus.Emit(Event{Name: "click"})
				cancel()
			}
		}()
	}
	wg.Wait()

	calls := 0
	bus.Subscribe("click", func(Event) { calls++ })
	bus.Emit(Event{Name: "click"})
	if calls != 1 {
		t.Errorf("expected bus usable after concurrent churn, got %d calls", calls)
	}
}
