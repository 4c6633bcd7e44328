package system

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleRunSkipsOverlappingRuns(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	job := singleRun(func() {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
	})

	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// the first run is still blocked, so this one must be skipped
	job.Run()
	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not finish")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}

	job.Run()
	if got := calls.Load(); got != 2 {
		t.Errorf("calls after the first run finished = %d, want 2", got)
	}
}
