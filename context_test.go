package main

import (
	"testing"
	"time"
)

func TestConnectionSendAfterClose(t *testing.T) {
	conn := NewConnection(nil)

	// handlers and the event pump run on their own goroutines, so sends
	// can race past Close; they must be dropped, not crash the process
	conn.Close(nil)
	conn.Send(H{"type": "state"})
	conn.Close(nil)
}

func TestConnectionSendBeforeClose(t *testing.T) {
	conn := NewConnection(nil)
	conn.Send(H{"type": "state"})

	select {
	case b := <-conn.send.Out():
		if len(b) == 0 {
			t.Error("empty payload queued")
		}
	case <-time.After(time.Second):
		t.Fatal("payload never reached the send channel")
	}
	conn.Close(nil)
}
