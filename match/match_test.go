package match_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/railsense/traceview/match"
)

func ExampleRemoveOffset() {
	name, off, _ := match.RemoveOffset("X_offset_42.dat", ".dat")
	fmt.Println(name, off)
	name, off, _ = match.RemoveOffset("X.dat", ".dat")
	fmt.Println(name, off)
	// Output:
	// X.dat 42
	// X.dat 0
}

func TestRemoveOffsetNoExtension(t *testing.T) {
	name, off, err := match.RemoveOffset("X_offset_42.txt", ".dat")
	if !errors.Is(err, match.ErrNoExtension) {
		t.Errorf("expected ErrNoExtension, got %v", err)
	}
	if name != "" || off != 0 {
		t.Errorf("expected empty name and zero offset, got %q %d", name, off)
	}
}

func TestRemoveOffsetBadNumber(t *testing.T) {
	_, _, err := match.RemoveOffset("X_offset_abc.dat", ".dat")
	if err == nil {
		t.Error("expected an error for a non-integer offset")
	}
}

func TestRemoveOffsetKeepsDirectories(t *testing.T) {
	name, off, err := match.RemoveOffset("/data/062493/peak/times/run_17_offset_-300.dat", ".dat")
	if err != nil {
		t.Fatal(err)
	}
	if name != "/data/062493/peak/times/run_17.dat" || off != -300 {
		t.Errorf("got %q %d", name, off)
	}
}

func TestBuildIndex(t *testing.T) {
	raw := []string{"s/raw/a.dat", "s/raw/b_offset_10.dat", "s/raw/odd"}
	ix := match.BuildIndex(raw, ".dat")
	if ix.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", ix.Len())
	}
	if diff := cmp.Diff([]int{0, 10, 0}, ix.Offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
	for key, want := range map[string]int{"s/raw/a.dat": 0, "s/raw/b.dat": 1, "s/raw/odd": 2} {
		got, ok := ix.Lookup(key)
		if !ok || got != want {
			t.Errorf("lookup %s: expected %d, got %d (found=%v)", key, want, got, ok)
		}
	}
}

func rawFixture() *match.Index {
	return match.BuildIndex([]string{
		"s/raw/t1.dat",
		"s/raw/t2.dat",
		"s/raw/t3_offset_5.dat",
		"s/raw/t4.dat",
	}, ".dat")
}

func TestMatchFillsOneSlotPerDerivedFile(t *testing.T) {
	ix := rawFixture()
	derived := []string{
		"s/peak/times/t2_offset_120.dat",
		"s/peak/times/t3.dat",
	}
	tbl, err := match.Match(ix, derived, "/raw/", "/peak/times/", match.Strict)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != ix.Len() {
		t.Errorf("expected table length %d, got %d", ix.Len(), tbl.Len())
	}
	if tbl.Count() != len(derived) {
		t.Errorf("expected %d filled slots, got %d", len(derived), tbl.Count())
	}
	want := []match.Entry{
		{},
		{Path: "s/peak/times/t2_offset_120.dat", Offset: 120},
		{Path: "s/peak/times/t3.dat"},
		{},
	}
	if diff := cmp.Diff(want, tbl.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if tbl.Has(0) || !tbl.Has(1) || tbl.Has(-1) || tbl.Has(4) {
		t.Error("Has disagrees with the entries")
	}
}

func TestMatchStrictReportsUnmatched(t *testing.T) {
	ix := rawFixture()
	derived := []string{
		"s/peak/times/t1.dat",
		"s/peak/times/t9.dat",
		"s/peak/times/t8.dat",
	}
	tbl, err := match.Match(ix, derived, "/raw/", "/peak/times/", match.Strict)
	var ue *match.UnmatchedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected an UnmatchedError, got %v", err)
	}
	if ue.Path != "s/peak/times/t9.dat" || ue.Key != "s/raw/t9.dat" || ue.Total != 2 {
		t.Errorf("unexpected error contents %+v", ue)
	}
	if tbl.Count() != 1 || len(tbl.Unmatched) != 2 {
		t.Errorf("expected 1 match and 2 unmatched, got %d and %d", tbl.Count(), len(tbl.Unmatched))
	}
}

func TestMatchLenientCarriesOn(t *testing.T) {
	ix := rawFixture()
	derived := []string{"s/peak/times/t9.dat", "s/peak/times/t4.dat"}
	tbl, err := match.Match(ix, derived, "/raw/", "/peak/times/", match.Lenient)
	if err != nil {
		t.Fatalf("expected no error in lenient mode, got %v", err)
	}
	if !tbl.Has(3) || tbl.Path(3) != "s/peak/times/t4.dat" {
		t.Errorf("expected t4 in slot 3, got %q", tbl.Path(3))
	}
	if diff := cmp.Diff([]string{"s/peak/times/t9.dat"}, tbl.Unmatched); diff != "" {
		t.Errorf("unmatched mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchCollisionKeepsLatter(t *testing.T) {
	ix := rawFixture()
	derived := []string{"s/box/best/times/t1_offset_1.dat", "s/box/best/times/t1_offset_2.dat"}
	tbl, err := match.Match(ix, derived, "/raw/", "/box/best/times/", match.Strict)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Entries[0].Offset != 2 || tbl.Count() != 1 {
		t.Errorf("expected the second file to win, got %+v", tbl.Entries[0])
	}
}

func TestStrictnessFromBool(t *testing.T) {
	if match.StrictnessFromBool(true) != match.Strict || match.StrictnessFromBool(false) != match.Lenient {
		t.Error("StrictnessFromBool mapping is wrong")
	}
	if match.Strict.String() != "strict" {
		t.Errorf("unexpected String %q", match.Strict.String())
	}
}
