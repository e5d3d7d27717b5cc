// Package interpage implements the cross-page event stitcher of spec.md
// §4.G: after every page has been resolved independently, it matches the
// "subscribe" half of an event channel (a page's onLoad calling
// this.getOpenerEventChannel().on(...)) against the "emit" half fired by
// whichever page navigated to it (wx.navigateTo's success callback calling
// eventChannel.emit(...)), joining on the shared event name.
package interpage

import "github.com/taintmini/taintmini/pkg/taint"

// PageEvents is one page's worth of events, carrying the page identity
// (its basename, per spec.md §6's CSV row shape) alongside the Resolver's
// output for that page.
type PageEvents struct {
	Page   string
	Events []taint.Event
}

// Record is one cross-page flow (spec.md §6 CSV row shape for
// `-inter-page-result.csv`): a value emitted from FromPage arrives at
// ToPage's sink via the named event channel.
type Record struct {
	FromPage  string
	ToPage    string
	EventName string
	Source    string
	Sink      string
}

// Stitch runs spec.md §4.G's procedure over every page's accumulated
// events and returns the resulting cross-page records.
func Stitch(pages []PageEvents) []Record {
	var out []Record
	seen := map[Record]bool{}

	for _, onPage := range pages {
		for _, onEv := range onPage.Events {
			if !isOpenerSubscribe(onEv) {
				continue
			}
			for _, emitPage := range pages {
				for _, emitEv := range emitPage.Events {
					if !isNavigateEmit(emitEv) || emitEv.EventName != onEv.EventName {
						continue
					}
					for _, src := range emitEv.Sources {
						if src == "wx.navigateTo" {
							continue
						}
						rec := Record{
							FromPage:  emitPage.Page,
							ToPage:    onPage.Page,
							EventName: onEv.EventName,
							Source:    src,
							Sink:      onEv.Sink,
						}
						if !seen[rec] {
							seen[rec] = true
							out = append(out, rec)
						}
					}
				}
			}
		}
	}
	return out
}

// isOpenerSubscribe reports whether ev is the `on`-side half of a channel
// opened via this.getOpenerEventChannel inside onLoad, with a non-empty
// sink (spec.md §4.G's matching predicate for the subscribing page).
func isOpenerSubscribe(ev taint.Event) bool {
	return ev.Type == taint.EventOn &&
		ev.Method == "onLoad" &&
		ev.Emitter == "this.getOpenerEventChannel" &&
		ev.Sink != ""
}

// isNavigateEmit reports whether ev is the `emit`-side half fired from a
// wx.navigateTo success callback.
func isNavigateEmit(ev taint.Event) bool {
	return ev.Type == taint.EventEmit && ev.Emitter == "wx.navigateTo"
}
