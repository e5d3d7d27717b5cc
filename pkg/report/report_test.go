package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/taintmini/taintmini/pkg/interpage"
	"github.com/taintmini/taintmini/pkg/taint"
)

func TestResultWriterWritesPipeDelimitedRows(t *testing.T) {
	dir := t.TempDir()
	rw, err := NewResultWriter(dir, "myapp")
	if err != nil {
		t.Fatalf("NewResultWriter: %v", err)
	}
	if err := rw.WritePage("foo", []taint.Result{
		{PageMethod: "onLoad", Ident: "v", Source: "wx.getStorageSync", Sink: "wx.request"},
	}); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "myapp-result.csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	snaps.MatchSnapshot(t, string(got))
}

func TestResultWriterRerunIsByteEqual(t *testing.T) {
	dir := t.TempDir()
	write := func() []byte {
		rw, err := NewResultWriter(dir, "myapp")
		if err != nil {
			t.Fatalf("NewResultWriter: %v", err)
		}
		rw.WritePage("foo", []taint.Result{
			{PageMethod: "onLoad", Ident: "v", Source: "wx.getStorageSync", Sink: "wx.request"},
		})
		rw.Close()
		b, err := os.ReadFile(filepath.Join(dir, "myapp-result.csv"))
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		return b
	}
	first := write()
	second := write()
	if string(first) != string(second) {
		t.Fatalf("rerun produced different output:\n%s\nvs\n%s", first, second)
	}
}

func TestInterPageWriter(t *testing.T) {
	dir := t.TempDir()
	iw, err := NewInterPageWriter(dir, "myapp")
	if err != nil {
		t.Fatalf("NewInterPageWriter: %v", err)
	}
	if err := iw.WriteRecords([]interpage.Record{
		{FromPage: "list", ToPage: "detail", EventName: "msg", Source: "userData", Sink: "wx.request"},
	}); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	if err := iw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "myapp-inter-page-result.csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	snaps.MatchSnapshot(t, string(got))
}

func TestBenchWriterMarksTimeout(t *testing.T) {
	dir := t.TempDir()
	bw, err := NewBenchWriter(dir, "myapp")
	if err != nil {
		t.Fatalf("NewBenchWriter: %v", err)
	}
	if err := bw.WriteRow("foo", 1000, 1005, false); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := bw.WriteRow("slow", 2000, 0, true); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "myapp-bench.csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	snaps.MatchSnapshot(t, string(got))
}
