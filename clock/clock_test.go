package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAdvanceFiresTicker(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	fc := NewFake(start)
	tk := fc.NewTicker(5 * time.Second)

	fc.Advance(4 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("ticker fired before its period")
	default:
	}

	fc.Advance(time.Second)
	select {
	case got := <-tk.C():
		assert.Equal(t, start.Add(5*time.Second), got)
	default:
		t.Fatal("ticker did not fire")
	}
}

func TestFakeStoppedTickerIsSilent(t *testing.T) {
	fc := NewFake(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	tk := fc.NewTicker(time.Second)
	tk.Stop()

	fc.Advance(10 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFakeSetDoesNotTick(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	fc := NewFake(start)
	tk := fc.NewTicker(time.Second)

	fc.Set(start.Add(time.Hour))
	assert.Equal(t, start.Add(time.Hour), fc.Now())
	select {
	case <-tk.C():
		t.Fatal("Set fired a ticker")
	default:
	}
}
