package schedule

import (
	"reflect"
	"testing"
	"time"
)

func TestManualRunsDueTasksInOrder(t *testing.T) {
	m := NewManual()
	var order []string

	m.AfterFunc(30*time.Millisecond, func() { order = append(order, "late") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "early") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "early-second") })

	m.Advance(20 * time.Millisecond)
	if want := []string{"early", "early-second"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("after 20ms order = %v, want %v", order, want)
	}
	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", m.Pending())
	}

	m.Advance(10 * time.Millisecond)
	if want := []string{"early", "early-second", "late"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("after 30ms order = %v, want %v", order, want)
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	fired := false
	task := m.AfterFunc(time.Second, func() { fired = true })

	if !task.Stop() {
		t.Fatal("Stop() on pending task should return true")
	}
	if task.Stop() {
		t.Fatal("second Stop() should return false")
	}

	m.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped task fired")
	}
}

func TestManualNestedScheduling(t *testing.T) {
	m := NewManual()
	var order []string

	m.AfterFunc(10*time.Millisecond, func() {
		order = append(order, "outer")
		m.AfterFunc(5*time.Millisecond, func() { order = append(order, "inner") })
	})

	m.Advance(12 * time.Millisecond)
	if want := []string{"outer"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}

	m.Advance(3 * time.Millisecond)
	if want := []string{"outer", "inner"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestNoopTask(t *testing.T) {
	var task Task = Noop{}
	if task.Stop() {
		t.Fatal("Noop.Stop() should return false")
	}
}
