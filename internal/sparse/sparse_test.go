package sparse

import "testing"

func TestInsertContains(t *testing.T) {
	s := New(16)
	if !s.Insert(3) {
		t.Error("Insert(3) = false, want true")
	}
	if s.Insert(3) {
		t.Error("second Insert(3) = true, want false")
	}
	if !s.Contains(3) {
		t.Error("Contains(3) = false after insert")
	}
	if s.Contains(4) {
		t.Error("Contains(4) = true, want false")
	}
	if s.Contains(100) {
		t.Error("Contains out of range = true, want false")
	}
}

func TestValuesOrder(t *testing.T) {
	s := New(8)
	for _, v := range []uint32{5, 1, 7, 1, 5} {
		s.Insert(v)
	}
	got := s.Values()
	want := []uint32{5, 1, 7}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestClearReuses(t *testing.T) {
	s := New(8)
	s.Insert(2)
	s.Clear()
	if s.Len() != 0 || s.Contains(2) {
		t.Error("Clear left elements behind")
	}
	if !s.Insert(2) {
		t.Error("Insert after Clear = false, want true")
	}
}
