package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{spec: "0 18 * * 1-5"},
		{spec: "30 0 18 * * *"},
		{spec: "@hourly"},
		{spec: "@every 15m"},
		{spec: "", wantErr: true},
		{spec: "every day", wantErr: true},
		{spec: "61 * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := ParseSchedule(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSchedule(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestScheduler_Next(t *testing.T) {
	s, err := New("0 18 * * *", func(context.Context) error { return nil }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	from := time.Date(2024, 1, 15, 12, 0, 0, 0, time.Local)
	want := time.Date(2024, 1, 15, 18, 0, 0, 0, time.Local)
	if got := s.Next(from); !got.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", from, got, want)
	}
}

func TestNew_InvalidSpec(t *testing.T) {
	if _, err := New("not a schedule", nil, nil); err == nil {
		t.Error("New should reject an invalid schedule")
	}
}

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	ran := make(chan struct{}, 10)

	s, err := New("@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		ran <- struct{}{}
		return errors.New("job errors do not stop the schedule")
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(5 * time.Second):
			t.Fatalf("job ran %d times before timeout, want 2", runs.Load())
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestScheduler_CancelledBeforeStart(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx); err != nil {
		t.Errorf("Run returned %v, want nil", err)
	}
	if runs.Load() != 0 {
		t.Errorf("job ran %d times, want 0", runs.Load())
	}
}
