package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv("PROBE_WORKERS", "")
	cpus := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		want       int
	}{
		{"cpu bound no limit", 1.0, 0, cpus},
		{"io bound no limit", 2.0, 0, cpus * 2},
		{"limit caps result", 2.0, 1, 1},
		{"tiny multiplier floors at one", 0.001, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestCountEnvOverride(t *testing.T) {
	t.Setenv("PROBE_WORKERS", "3")

	if got := Count(1.0, 0); got != 3 {
		t.Errorf("Count with override = %d, want 3", got)
	}
	if got := Count(1.0, 2); got != 2 {
		t.Errorf("Count with override and limit = %d, want 2", got)
	}

	t.Setenv("PROBE_WORKERS", "junk")
	if got := Count(1.0, 0); got != runtime.GOMAXPROCS(0) {
		t.Errorf("Count with bad override = %d, want %d", got, runtime.GOMAXPROCS(0))
	}
}

func TestForIO(t *testing.T) {
	if got, max := ForIO(8), 8; got > max || got < 1 {
		t.Errorf("ForIO(8) = %d, want between 1 and 8", got)
	}
	if got := ForCPU(0); got < 1 {
		t.Errorf("ForCPU(0) = %d, want at least 1", got)
	}
}
