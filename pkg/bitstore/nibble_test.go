package bitstore

import "testing"

func TestNibbleArrayGetSet(t *testing.T) {
	a := NewNibbleArray(16)
	for i := 0; i < 16; i++ {
		a.Set(i, byte(i%16))
	}
	for i := 0; i < 16; i++ {
		if got := a.Get(i); got != byte(i%16) {
			t.Errorf("Get(%d) = %d, want %d", i, got, i%16)
		}
	}
}

func TestNibbleArrayFill(t *testing.T) {
	a := NewNibbleArray(4096)
	a.Fill(0xF)
	for i := 0; i < 4096; i++ {
		if got := a.Get(i); got != 0xF {
			t.Fatalf("Get(%d) = %d, want 15", i, got)
		}
	}
}

func TestNibbleArrayMasksHighBits(t *testing.T) {
	a := NewNibbleArray(2)
	a.Set(0, 0xFF)
	if got := a.Get(0); got != 0xF {
		t.Errorf("Get(0) = %d, want 15 (masked)", got)
	}
}
