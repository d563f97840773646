package metrics

import (
	"context"
	"testing"
	"time"
)

func TestCollectReturnsBoundedSnapshot(t *testing.T) {
	c := NewCollector("cloudflared")

	start := time.Now()
	snap := c.Collect(context.Background())
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("Collect blocked for %s", elapsed)
	}

	if snap.CPUPercent < 0 || snap.CPUPercent > 100 {
		t.Errorf("cpu = %f, want 0..100", snap.CPUPercent)
	}
	if snap.MemoryPercent < 0 || snap.MemoryPercent > 100 {
		t.Errorf("memory = %f, want 0..100", snap.MemoryPercent)
	}
	if snap.DiskPercent < 0 || snap.DiskPercent > 100 {
		t.Errorf("disk = %f, want 0..100", snap.DiskPercent)
	}
	if snap.SampledAt.IsZero() {
		t.Error("SampledAt should be set")
	}
	// No advisory cache wired in this test: authenticated stays false.
	if snap.Authenticated {
		t.Error("authenticated should default to false")
	}
}

func TestDaemonLivenessForAbsentBinary(t *testing.T) {
	c := NewCollector("/usr/bin/definitely-not-a-real-daemon-name")
	snap := c.Collect(context.Background())
	if snap.DaemonRunning {
		t.Error("daemon should not be reported running")
	}
}
