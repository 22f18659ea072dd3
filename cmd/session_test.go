package cmd

import (
	"reflect"
	"testing"
	"time"

	"github.com/achernya/tvcapture/capture"
	"github.com/achernya/tvcapture/db"
)

func TestDeliverKeepsLifecycleEvents(t *testing.T) {
	s := &session{events: make(chan any, 1), done: make(chan struct{})}
	s.deliver(capture.Output{Role: db.RoleRecorder, Line: "Pos: 1.0s"})
	// The queue is full, so more output is dropped.
	s.deliver(capture.Output{Role: db.RoleRecorder, Line: "Pos: 2.0s"})

	ended := capture.RecordingEnded{File: "capture.avi", State: capture.Exited}
	delivered := make(chan struct{})
	go func() {
		s.deliver(ended)
		close(delivered)
	}()
	select {
	case <-delivered:
		t.Fatal("lifecycle event was not held back by a full queue")
	case <-time.After(50 * time.Millisecond):
	}

	var got []any
	got = append(got, <-s.events)
	<-delivered
	got = append(got, <-s.events)
	want := []any{capture.Output{Role: db.RoleRecorder, Line: "Pos: 1.0s"}, ended}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDeliverAfterDone(t *testing.T) {
	s := &session{events: make(chan any, 1), done: make(chan struct{})}
	s.deliver(capture.Output{Line: "x"})
	close(s.done)

	delivered := make(chan struct{})
	go func() {
		s.deliver(capture.StateChanged{Role: db.RoleRecorder, State: capture.Killed})
		close(delivered)
	}()
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked after the session finished")
	}
}
