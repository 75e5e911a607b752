package services

import (
	"context"
	"errors"
	"testing"

	"ore/internal/core"
)

type recordingPublisher struct {
	published []core.MonthID
	failOn    core.MonthID
	closed    bool
}

func (r *recordingPublisher) PublishMonthSync(_ context.Context, id core.MonthID) error {
	if id == r.failOn {
		return errors.New("broker down")
	}
	r.published = append(r.published, id)
	return nil
}

func (r *recordingPublisher) Close() error {
	r.closed = true
	return nil
}

func TestSyncPublisherPublishMonths(t *testing.T) {
	march := core.MonthID{Year: 2025, Month: 3}
	april := core.MonthID{Year: 2025, Month: 4}
	pub := &recordingPublisher{failOn: march}
	s := NewSyncPublisher(pub)

	if n := s.PublishMonths(context.Background(), []core.MonthID{march, april}); n != 1 {
		t.Fatalf("expected 1 published, got %d", n)
	}
	if len(pub.published) != 1 || pub.published[0] != april {
		t.Fatalf("unexpected published months %v", pub.published)
	}
	if err := s.Close(); err != nil || !pub.closed {
		t.Fatalf("Close: %v closed=%v", err, pub.closed)
	}
}

func TestSyncPublisherWithoutClient(t *testing.T) {
	var nilPublisher *SyncPublisher
	if n := nilPublisher.PublishMonths(context.Background(), []core.MonthID{{Year: 2025, Month: 3}}); n != 0 {
		t.Fatalf("expected nothing published, got %d", n)
	}
	if err := NewSyncPublisher(nil).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
