package pagerwidget

import (
	"testing"

	"github.com/dalemusser/ltiusage/internal/app/system/pagelink"
	"github.com/google/go-cmp/cmp"
)

func kinds(w Widget) []Kind {
	out := make([]Kind, 0, len(w.Controls))
	for _, c := range w.Controls {
		out = append(out, c.Kind)
	}
	return out
}

func TestBuild_SinglePage(t *testing.T) {
	w := Build(Meta{GroupID: 3, Page: 0, TotalPages: 1}, "/ltiusage")

	want := []Kind{KindFirst, KindIndicator, KindLast}
	if diff := cmp.Diff(want, kinds(w)); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
	first, _ := w.Find(KindFirst)
	last, _ := w.Find(KindLast)
	if !first.Disabled || !last.Disabled {
		t.Errorf("first/last should both be disabled on a single page, got %+v / %+v", first, last)
	}
	ind, _ := w.Find(KindIndicator)
	if ind.Label != "Page 1 of 1" {
		t.Errorf("indicator = %q, want %q", ind.Label, "Page 1 of 1")
	}
}

func TestBuild_FirstOfTwo(t *testing.T) {
	w := Build(Meta{GroupID: 5, Page: 0, TotalPages: 2, HasNext: true, Next: 1}, "/ltiusage")

	want := []Kind{KindFirst, KindIndicator, KindNext, KindLast}
	if diff := cmp.Diff(want, kinds(w)); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}

	next, _ := w.Find(KindNext)
	target, ok := pagelink.Decode(next.Href)
	if !ok || target.GroupID != 5 || target.Page != 1 {
		t.Errorf("next href %q decodes to %+v (ok=%v), want group 5 page 1", next.Href, target, ok)
	}
	if !next.Navigable() {
		t.Error("next should be navigable")
	}

	last, _ := w.Find(KindLast)
	if last.Disabled {
		t.Error("last should be enabled on page 1 of 2")
	}
	if last.Page != 1 {
		t.Errorf("last.Page = %d, want 1", last.Page)
	}
}

func TestBuild_LastOfTwo(t *testing.T) {
	w := Build(Meta{GroupID: 5, Page: 1, TotalPages: 2, HasPrev: true, Prev: 0}, "/ltiusage")

	want := []Kind{KindFirst, KindPrev, KindIndicator, KindLast}
	if diff := cmp.Diff(want, kinds(w)); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
	first, _ := w.Find(KindFirst)
	if first.Disabled {
		t.Error("first should be enabled on page 2")
	}
	last, _ := w.Find(KindLast)
	if !last.Disabled || last.Navigable() {
		t.Error("last should be disabled on the last page")
	}
	ind, _ := w.Find(KindIndicator)
	if ind.Label != "Page 2 of 2" {
		t.Errorf("indicator = %q, want %q", ind.Label, "Page 2 of 2")
	}
}

func TestBuild_ZeroTotalPagesTreatedAsOne(t *testing.T) {
	w := Build(Meta{GroupID: 1}, "/ltiusage")
	ind, _ := w.Find(KindIndicator)
	if ind.Label != "Page 1 of 1" {
		t.Errorf("indicator = %q, want %q", ind.Label, "Page 1 of 1")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	meta := Meta{GroupID: 9, Page: 2, TotalPages: 4, HasPrev: true, HasNext: true, Prev: 1, Next: 3}
	a := Build(meta, "/ltiusage")
	b := Build(meta, "/ltiusage")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Build not deterministic (-a +b):\n%s", diff)
	}
}

func TestText(t *testing.T) {
	w := Build(Meta{GroupID: 5, Page: 0, TotalPages: 2, HasNext: true, Next: 1}, "/ltiusage")
	want := "[« First]  Page 1 of 2  Next ›  Last »"
	if got := w.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}
