package hub

import "testing"

func TestDeadlineQueueOrdersByOpenTime(t *testing.T) {
	q := newDeadlineQueue()
	epA := Endpoint{Principal: Principal{1}, Method: "a"}
	epB := Endpoint{Principal: Principal{2}, Method: "b"}
	epC := Endpoint{Principal: Principal{3}, Method: "c"}

	q.push(300, epC)
	q.push(100, epA)
	q.push(200, epB)

	wantOrder := []Endpoint{epA, epB, epC}
	for _, want := range wantOrder {
		entry, ok := q.peek()
		if !ok {
			t.Fatalf("expected an entry")
		}
		if entry.endpoint != want {
			t.Fatalf("peek() = %+v, want %+v", entry.endpoint, want)
		}
		got := q.pop()
		if got.endpoint != want {
			t.Fatalf("pop() = %+v, want %+v", got.endpoint, want)
		}
	}

	if _, ok := q.peek(); ok {
		t.Fatalf("expected the queue to be empty")
	}
}

func TestDeadlineQueueLen(t *testing.T) {
	q := newDeadlineQueue()
	if q.len() != 0 {
		t.Fatalf("len() = %d, want 0", q.len())
	}
	q.push(1, Endpoint{})
	q.push(2, Endpoint{})
	if q.len() != 2 {
		t.Fatalf("len() = %d, want 2", q.len())
	}
}
