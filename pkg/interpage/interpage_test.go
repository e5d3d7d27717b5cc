package interpage

import (
	"testing"

	"github.com/taintmini/taintmini/pkg/taint"
)

// TestStitchMatchesEmitToSubscribe exercises spec.md §8 scenario 5: a
// navigateTo emit on one page reaches an onLoad subscribe on another.
func TestStitchMatchesEmitToSubscribe(t *testing.T) {
	pages := []PageEvents{
		{
			Page: "list",
			Events: []taint.Event{
				{
					Method:    "go",
					EventName: "msg",
					Type:      taint.EventEmit,
					Emitter:   "wx.navigateTo",
					Sources:   []string{"userData", "wx.navigateTo"},
				},
			},
		},
		{
			Page: "detail",
			Events: []taint.Event{
				{
					Method:    "onLoad",
					EventName: "msg",
					Type:      taint.EventOn,
					Emitter:   "this.getOpenerEventChannel",
					Sink:      "wx.request",
				},
			},
		},
	}

	recs := Stitch(pages)
	if len(recs) != 1 {
		t.Fatalf("expected exactly one record, got %d: %+v", len(recs), recs)
	}
	got := recs[0]
	want := Record{FromPage: "list", ToPage: "detail", EventName: "msg", Source: "userData", Sink: "wx.request"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

// TestStitchExcludesNavigateToSelfReference confirms the literal
// "wx.navigateTo" self-reference source is never emitted as a record.
func TestStitchExcludesNavigateToSelfReference(t *testing.T) {
	pages := []PageEvents{
		{
			Page: "list",
			Events: []taint.Event{
				{Method: "go", EventName: "msg", Type: taint.EventEmit, Emitter: "wx.navigateTo", Sources: []string{"wx.navigateTo"}},
			},
		},
		{
			Page: "detail",
			Events: []taint.Event{
				{Method: "onLoad", EventName: "msg", Type: taint.EventOn, Emitter: "this.getOpenerEventChannel", Sink: "wx.request"},
			},
		},
	}
	if recs := Stitch(pages); len(recs) != 0 {
		t.Fatalf("expected no records, got %+v", recs)
	}
}

// TestStitchIgnoresNonOpenerSubscribe confirms an `on` event whose
// emitter isn't this.getOpenerEventChannel (e.g. a plain EventEmitter)
// never matches.
func TestStitchIgnoresNonOpenerSubscribe(t *testing.T) {
	pages := []PageEvents{
		{
			Page: "list",
			Events: []taint.Event{
				{Method: "go", EventName: "msg", Type: taint.EventEmit, Emitter: "wx.navigateTo", Sources: []string{"userData"}},
			},
		},
		{
			Page: "detail",
			Events: []taint.Event{
				{Method: "onLoad", EventName: "msg", Type: taint.EventOn, Emitter: "bus.getOpenerEventChannel", Sink: "wx.request"},
			},
		},
	}
	if recs := Stitch(pages); len(recs) != 0 {
		t.Fatalf("expected no records, got %+v", recs)
	}
}

// TestStitchRequiresMatchingEventName confirms distinct event names never
// cross-match.
func TestStitchRequiresMatchingEventName(t *testing.T) {
	pages := []PageEvents{
		{
			Page: "list",
			Events: []taint.Event{
				{Method: "go", EventName: "other", Type: taint.EventEmit, Emitter: "wx.navigateTo", Sources: []string{"userData"}},
			},
		},
		{
			Page: "detail",
			Events: []taint.Event{
				{Method: "onLoad", EventName: "msg", Type: taint.EventOn, Emitter: "this.getOpenerEventChannel", Sink: "wx.request"},
			},
		},
	}
	if recs := Stitch(pages); len(recs) != 0 {
		t.Fatalf("expected no records, got %+v", recs)
	}
}
