package scheduler

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingJob struct {
	executed *atomic.Int64
	block    chan struct{}
}

func (j *countingJob) Execute(ctx context.Context) error {
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	j.executed.Add(1)
	return nil
}

func (j *countingJob) UserID() string      { return "1" }
func (j *countingJob) Description() string { return "counting job" }

func TestWorkerPoolProcessesJobs(t *testing.T) {
	pool := NewWorkerPool(2, 0, 10)
	pool.Start()

	var executed atomic.Int64
	for i := 0; i < 5; i++ {
		if err := pool.Submit(&countingJob{executed: &executed}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	pool.ShutdownWithTimeout(5 * time.Second)

	if got := executed.Load(); got != 5 {
		t.Errorf("executed %d jobs, expected 5", got)
	}
}

func TestWorkerPoolSubmitDropsWhenFull(t *testing.T) {
	// One worker blocked on a job, queue of one: the third submit has
	// nowhere to go and must be dropped, not block the caller.
	pool := NewWorkerPool(1, 0, 1)
	pool.Start()

	var executed atomic.Int64
	block := make(chan struct{})

	if err := pool.Submit(&countingJob{executed: &executed, block: block}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	// Give the worker time to pick up the blocking job, then fill the queue.
	time.Sleep(50 * time.Millisecond)
	if err := pool.Submit(&countingJob{executed: &executed}); err != nil {
		t.Fatalf("queued submit failed: %v", err)
	}

	err := pool.Submit(&countingJob{executed: &executed})
	if err == nil {
		t.Fatal("expected overflow submit to fail")
	}
	if !strings.Contains(err.Error(), "queue full") {
		t.Errorf("unexpected error: %v", err)
	}

	close(block)
	pool.ShutdownWithTimeout(5 * time.Second)
}

func TestWorkerPoolSubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(1, 0, 1)
	pool.Start()
	pool.Shutdown()

	var executed atomic.Int64
	if err := pool.Submit(&countingJob{executed: &executed}); err == nil {
		t.Error("expected submit after shutdown to fail")
	}
}

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		input   string
		want    ScheduleTime
		wantErr bool
	}{
		{input: "06:00", want: ScheduleTime{Hour: 6, Minute: 0}},
		{input: "23:59", want: ScheduleTime{Hour: 23, Minute: 59}},
		{input: "0:5", want: ScheduleTime{Hour: 0, Minute: 5}},
		{input: "24:00", wantErr: true},
		{input: "12:61", wantErr: true},
		{input: "noon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScheduleTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSchedulerShouldRunDedupesMinute(t *testing.T) {
	s := &Scheduler{
		scheduleTimes: []ScheduleTime{{Hour: 6, Minute: 0}},
	}

	at := time.Date(2026, 2, 1, 6, 0, 30, 0, time.UTC)
	if !s.shouldRun(at) {
		t.Fatal("expected first check in the scheduled minute to fire")
	}
	if s.shouldRun(at.Add(10 * time.Second)) {
		t.Error("second check in the same minute must not fire again")
	}
	if s.shouldRun(at.Add(time.Hour)) {
		t.Error("unscheduled minute must not fire")
	}

	// The same wall-clock minute on the next day fires again.
	if !s.shouldRun(at.AddDate(0, 0, 1)) {
		t.Error("scheduled minute on a later day should fire")
	}
}
