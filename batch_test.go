package hub

import "testing"

func TestPendingBatchSeal(t *testing.T) {
	p := &pendingBatch{bytes: []byte{1, 2, 3}, eventsCount: 2, openTimeNS: 42}
	sealed := p.seal()
	if sealed.eventsCount != 2 {
		t.Fatalf("eventsCount = %d, want 2", sealed.eventsCount)
	}
	if string(sealed.bytes) != string([]byte{1, 2, 3}) {
		t.Fatalf("bytes = %v, want %v", sealed.bytes, []byte{1, 2, 3})
	}
}
