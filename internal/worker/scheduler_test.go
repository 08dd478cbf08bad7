package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScheduler_RegisterValidation(t *testing.T) {
	s := NewScheduler(1)

	noop := func(ctx context.Context) error { return nil }

	if err := s.Register("job-a", "*/5 * * * *", noop); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := s.Register("job-a", "*/5 * * * *", noop); err == nil {
		t.Error("Expected an error for a duplicate job name")
	}
	if err := s.Register("job-b", "not a schedule", noop); err == nil {
		t.Error("Expected an error for an invalid schedule")
	}
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(2)
	s.Start()
	defer s.Stop()

	ran := make(chan struct{})
	result, err := s.RunNow("immediate", func(ctx context.Context) error {
		close(ran)
		return nil
	})
	if err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Job did not run")
	}
	if err := <-result; err != nil {
		t.Errorf("Expected nil job error, got %v", err)
	}
}

func TestScheduler_RunNowReportsError(t *testing.T) {
	s := NewScheduler(1)
	s.Start()
	defer s.Stop()

	wantErr := errors.New("boom")
	result, err := s.RunNow("failing", func(ctx context.Context) error {
		return wantErr
	})
	if err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, wantErr) {
			t.Errorf("Expected job error %v, got %v", wantErr, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Job result never arrived")
	}
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	p := NewWorkerPool(1)
	p.Start()
	p.Stop()

	err := p.Submit(Job{ID: "late", Handler: func(ctx context.Context) error { return nil }})
	if err == nil {
		t.Error("Expected an error submitting to a stopped pool")
	}
}
