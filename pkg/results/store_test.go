package results

import (
	"testing"
	"time"

	"github.com/objectdeck/objectdeck/pkg/detect"
)

func TestStore_AppendOrdering(t *testing.T) {
	s := NewStore()

	first := s.Append(&Result{Origin: OriginLive})
	second := s.Append(&Result{Origin: OriginImage, SourceName: "a.jpg"})
	third := s.Append(&Result{Origin: OriginVideo, SourceName: "b.mp4"})

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("List: got %d items, want 3", len(list))
	}

	// Most-recent-first
	if list[0].ID != third.ID || list[1].ID != second.ID || list[2].ID != first.ID {
		t.Errorf("List order: got [%d %d %d], want [%d %d %d]",
			list[0].ID, list[1].ID, list[2].ID, third.ID, second.ID, first.ID)
	}
}

func TestStore_MonotonicIDs(t *testing.T) {
	s := NewStore()

	var last int64
	for i := 0; i < 10; i++ {
		r := s.Append(&Result{Origin: OriginLive})
		if r.ID <= last {
			t.Fatalf("ID not monotonically increasing: %d after %d", r.ID, last)
		}
		last = r.ID
	}
}

func TestStore_TimestampsNonDecreasing(t *testing.T) {
	s := NewStore()

	var prev time.Time
	for i := 0; i < 5; i++ {
		r := s.Append(&Result{Origin: OriginLive})
		if r.Timestamp.Before(prev) {
			t.Fatalf("timestamp decreased: %v before %v", r.Timestamp, prev)
		}
		prev = r.Timestamp
	}
}

func TestStore_RemoveRestoresPreAppendState(t *testing.T) {
	s := NewStore()
	kept := s.Append(&Result{Origin: OriginImage, SourceName: "keep.jpg"})

	before := s.List()

	added := s.Append(&Result{
		Origin:     OriginLive,
		Detections: []detect.Detection{{Class: "person", Score: 0.8}},
	})
	s.Remove(added.ID)

	after := s.List()
	if len(after) != len(before) {
		t.Fatalf("length after append+remove: got %d, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("item %d: got ID %d, want %d", i, after[i].ID, before[i].ID)
		}
	}
	if _, ok := s.Get(kept.ID); !ok {
		t.Error("Get: surviving item missing after remove")
	}
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	s := NewStore()
	s.Append(&Result{Origin: OriginLive})
	s.Append(&Result{Origin: OriginLive})

	s.Remove(9999)

	if s.Len() != 2 {
		t.Errorf("Len after removing absent ID: got %d, want 2", s.Len())
	}
}

func TestStore_GetAbsent(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get(1); ok {
		t.Error("Get: found a result in an empty store")
	}
}
