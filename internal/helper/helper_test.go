package helper

import "testing"

func TestHash8(t *testing.T) {
	a := Hash8("dj@example.com")
	if len(a) != 16 {
		t.Fatalf("len=%d", len(a))
	}
	if a != Hash8("dj@example.com") {
		t.Fatal("not stable")
	}
	if a == Hash8("DJ@example.com") {
		t.Fatal("case must matter")
	}
}
