package core

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestActivityLogEvictsOldestFirst(t *testing.T) {
	log := NewActivityLog(0)
	if log.Limit() != DefaultHistorySize {
		t.Fatalf("expected default limit %d, got %d", DefaultHistorySize, log.Limit())
	}

	for i := 1; i <= 8; i++ {
		log.Append("general", fmt.Sprintf("m%d", i))
	}

	want := []string{"m4", "m5", "m6", "m7", "m8"}
	if got := log.Recent("general"); !reflect.DeepEqual(got, want) {
		t.Fatalf("recent = %v, want %v", got, want)
	}
}

func TestActivityLogUnknownChannelIsEmpty(t *testing.T) {
	log := NewActivityLog(3)

	got := log.Recent("nowhere")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestActivityLogChannelsAreIndependent(t *testing.T) {
	log := NewActivityLog(2)
	log.Append("a", "a1")
	log.Append("b", "b1")
	log.Append("a", "a2")
	log.Append("a", "a3")

	if got := log.Recent("a"); !reflect.DeepEqual(got, []string{"a2", "a3"}) {
		t.Fatalf("unexpected a log: %v", got)
	}
	if got := log.Recent("b"); !reflect.DeepEqual(got, []string{"b1"}) {
		t.Fatalf("unexpected b log: %v", got)
	}
}

func TestActivityLogRecentIsACopy(t *testing.T) {
	log := NewActivityLog(2)
	log.Append("a", "a1")

	got := log.Recent("a")
	got[0] = "mutated"

	if log.Recent("a")[0] != "a1" {
		t.Fatalf("Recent exposed internal storage")
	}
}

func TestActivityLogConcurrentAppendStaysBounded(t *testing.T) {
	log := NewActivityLog(5)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				log.Append("general", fmt.Sprintf("w%d-%d", w, i))
				if n := len(log.Recent("general")); n > 5 {
					t.Errorf("log grew to %d entries", n)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if n := len(log.Recent("general")); n != 5 {
		t.Fatalf("expected 5 entries, got %d", n)
	}
}
