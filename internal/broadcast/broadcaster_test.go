// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package broadcast

import (
	"sync"
	"testing"

	"github.com/MKhiriev/go-team-sync/internal/logger"
	"github.com/MKhiriev/go-team-sync/models"
	"github.com/stretchr/testify/assert"
)

func event(prev, next models.SyncStatus) models.SyncEvent {
	return models.SyncEvent{Previous: prev, Status: next}
}

func TestPublish_DeliversInOrder(t *testing.T) {
	b := New(logger.Nop())

	var got []string
	b.Subscribe(func(e models.SyncEvent) { got = append(got, "a:"+string(e.Status)) })
	b.Subscribe(func(e models.SyncEvent) { got = append(got, "b:"+string(e.Status)) })

	b.Publish(event(models.SyncStatusIdle, models.SyncStatusSyncing))
	b.Publish(event(models.SyncStatusSyncing, models.SyncStatusIdle))

	assert.Equal(t, []string{"a:syncing", "b:syncing", "a:idle", "b:idle"}, got)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	b := New(logger.Nop())

	calls := 0
	unsubscribe := b.Subscribe(func(models.SyncEvent) { calls++ })
	other := b.Subscribe(func(models.SyncEvent) {})

	unsubscribe()
	unsubscribe()
	b.Publish(event(models.SyncStatusIdle, models.SyncStatusSyncing))

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, b.Len())
	other()
	assert.Equal(t, 0, b.Len())
}

func TestUnsubscribe_FromInsideCallback(t *testing.T) {
	b := New(logger.Nop())

	var first, second int
	var unsubscribeSecond func()
	var unsubscribeFirst func()
	unsubscribeFirst = b.Subscribe(func(models.SyncEvent) {
		first++
		unsubscribeFirst()
		unsubscribeSecond()
	})
	unsubscribeSecond = b.Subscribe(func(models.SyncEvent) { second++ })

	b.Publish(event(models.SyncStatusIdle, models.SyncStatusSyncing))
	b.Publish(event(models.SyncStatusSyncing, models.SyncStatusIdle))

	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second, "a listener removed earlier in the round must not be called")
	assert.Equal(t, 0, b.Len())
}

func TestPublish_RecoversPanickingListener(t *testing.T) {
	b := New(logger.Nop())

	delivered := false
	b.Subscribe(func(models.SyncEvent) { panic("boom") })
	b.Subscribe(func(models.SyncEvent) { delivered = true })

	assert.NotPanics(t, func() {
		b.Publish(event(models.SyncStatusSyncing, models.SyncStatusError))
	})
	assert.True(t, delivered)
}

func TestPublish_Serialised(t *testing.T) {
	b := New(logger.Nop())

	var mu sync.Mutex
	inFlight, maxInFlight, total := 0, 0, 0
	b.Subscribe(func(models.SyncEvent) {
		mu.Lock()
		inFlight++
		total++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		mu.Lock()
		inFlight--
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Publish(event(models.SyncStatusIdle, models.SyncStatusSyncing))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, total)
	assert.Equal(t, 1, maxInFlight)
}

func TestOnEnterStatus(t *testing.T) {
	b := New(logger.Nop())

	reloads := 0
	unsubscribe := OnEnterStatus(b, models.SyncStatusIdle, func(models.SyncEvent) { reloads++ })

	b.Publish(event(models.SyncStatusIdle, models.SyncStatusSyncing))
	b.Publish(event(models.SyncStatusSyncing, models.SyncStatusIdle))
	b.Publish(event(models.SyncStatusIdle, models.SyncStatusIdle))
	b.Publish(event(models.SyncStatusSyncing, models.SyncStatusError))
	b.Publish(event(models.SyncStatusError, models.SyncStatusIdle))

	assert.Equal(t, 2, reloads)

	unsubscribe()
	b.Publish(event(models.SyncStatusSyncing, models.SyncStatusIdle))
	assert.Equal(t, 2, reloads)
}
