package core

import "testing"

func TestCallStateLifecycle(t *testing.T) {
	c := NewCallState()
	if !c.Idle() {
		t.Fatal("new CallState should be idle")
	}

	c.Current = 3
	if c.Idle() {
		t.Fatal("CallState with a current index should not be idle")
	}

	c.Track(10)
	c.Track(20)
	if len(c.FreeList) != 2 || c.FreeList[0] != 10 || c.FreeList[1] != 20 {
		t.Errorf("FreeList = %v", c.FreeList)
	}

	c.Reset()
	if !c.Idle() {
		t.Error("Reset should return to idle")
	}
	if len(c.FreeList) != 0 {
		t.Errorf("Reset should clear FreeList, got %v", c.FreeList)
	}
}

func TestTakeFirstCallOnlyOnce(t *testing.T) {
	c := NewCallState()
	if !c.TakeFirstCall() {
		t.Fatal("first TakeFirstCall should report true")
	}
	for i := 0; i < 3; i++ {
		if c.TakeFirstCall() {
			t.Fatalf("TakeFirstCall reported true again on call %d", i)
		}
	}
}
