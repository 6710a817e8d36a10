package store

import (
	"sync"
	"testing"
	"time"
)

var _ Store = (*MemoryStore)(nil)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	// should start empty
	if len(store.GetAll()) != 0 {
		t.Errorf("GetAll() = %v items, want 0", len(store.GetAll()))
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()

	snap := Snapshot{
		Name:         "Roof",
		Address:      "192.168.1.40",
		CurrentPower: 4200,
		EnergyToday:  14.2,
		Serial:       "123456789",
		Model:        "Powador 8000xi",
		CheckedAt:    time.Now(),
	}

	store.Update(snap)

	all := store.GetAll()
	if len(all) != 1 {
		t.Fatalf("GetAll() = %v items, want 1", len(all))
	}

	if all[0].Name != "Roof" {
		t.Errorf("GetAll()[0].Name = %v, want %v", all[0].Name, "Roof")
	}
	if all[0].CurrentPower != 4200 {
		t.Errorf("GetAll()[0].CurrentPower = %v, want 4200", all[0].CurrentPower)
	}
}

func TestMemoryStore_UpdateOverwrites(t *testing.T) {
	store := NewMemoryStore()

	// first update
	store.Update(Snapshot{Name: "Roof", CurrentPower: 4200})

	// second update with same name should overwrite
	store.Update(Snapshot{Name: "Roof", CurrentPower: 100})

	all := store.GetAll()
	if len(all) != 1 {
		t.Fatalf("GetAll() = %v items, want 1", len(all))
	}

	if all[0].CurrentPower != 100 {
		t.Errorf("GetAll()[0].CurrentPower = %v, want 100", all[0].CurrentPower)
	}
}

func TestMemoryStore_Get(t *testing.T) {
	store := NewMemoryStore()
	store.Update(Snapshot{Name: "Roof", CurrentPower: 4200})

	snap, ok := store.Get("Roof")
	if !ok {
		t.Fatal("Get(Roof) not found")
	}
	if snap.CurrentPower != 4200 {
		t.Errorf("Get(Roof).CurrentPower = %v, want 4200", snap.CurrentPower)
	}

	if _, ok := store.Get("unknown"); ok {
		t.Error("Get(unknown) = found, want not found")
	}
}

func TestMemoryStore_MultipleInverters(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Snapshot{Name: "Roof"})
	store.Update(Snapshot{Name: "Garage"})
	store.Update(Snapshot{Name: "Barn"})

	all := store.GetAll()
	if len(all) != 3 {
		t.Errorf("GetAll() = %v items, want 3", len(all))
	}
}

func TestMemoryStore_Remove(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Snapshot{Name: "Roof"})
	store.Update(Snapshot{Name: "Garage"})

	store.Remove("Roof")

	if _, ok := store.Get("Roof"); ok {
		t.Error("Get(Roof) after Remove = found, want gone")
	}
	if len(store.GetAll()) != 1 {
		t.Errorf("GetAll() = %v items, want 1", len(store.GetAll()))
	}

	// removing an unknown name is a no-op
	store.Remove("unknown")
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	// update should send to subscriber
	go func() {
		store.Update(Snapshot{Name: "Roof", CurrentPower: 4200})
	}()

	select {
	case snap := <-ch:
		if snap.Name != "Roof" {
			t.Errorf("received Name = %v, want %v", snap.Name, "Roof")
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	// update should fanout to all subscribers
	go func() {
		store.Update(Snapshot{Name: "Roof"})
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 updates", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)

	// channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel not closed")
	}

	// unsubscribing twice is safe
	store.Unsubscribe(ch)
}

// TestMemoryStore_SlowSubscriberDoesNotBlock verifies that a subscriber that
// never drains its channel cannot stall the update path.
func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()

	_ = store.Subscribe() // never read

	done := make(chan struct{})
	go func() {
		// more updates than the subscriber buffer holds
		for i := 0; i < 150; i++ {
			store.Update(Snapshot{Name: "Roof", CurrentPower: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Update blocked on a slow subscriber")
	}
}

// TestMemoryStore_ConcurrentAccess exercises mixed readers and writers.
// Run with: go test -race ./internal/store/...
func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Update(Snapshot{Name: "Roof", CurrentPower: n*100 + j})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.GetAll()
				store.Get("Roof")
			}
		}()
	}
	wg.Wait()
}
