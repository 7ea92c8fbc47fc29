package sched

import (
	"testing"

	"github.com/BAQIC/emulate-server/job"
)

func TestSliceShotsZeroDepthTreatedAsOne(t *testing.T) {
	j := &job.Job{Depth: 0, Shots: 10000}
	got := sliceShots(j, 10, 200)
	want := 2000 // floor(10/1*200)
	if got != want {
		t.Fatalf("sliceShots(depth=0) = %d, want %d", got, want)
	}
}

func TestSliceShotsNegativeDepthTreatedAsOne(t *testing.T) {
	j := &job.Job{Depth: -5, Shots: 10000}
	got := sliceShots(j, 10, 200)
	want := 2000
	if got != want {
		t.Fatalf("sliceShots(depth=-5) = %d, want %d", got, want)
	}
}

func TestSliceShotsClampsToRemainingShots(t *testing.T) {
	j := &job.Job{Depth: 1, Shots: 50, ExecShots: 20}
	got := sliceShots(j, 10, 200)
	want := 30 // remaining shots, smaller than the raw formula's 2000
	if got != want {
		t.Fatalf("sliceShots(remaining=30) = %d, want %d", got, want)
	}
}

func TestSliceShotsNeverBelowOne(t *testing.T) {
	j := &job.Job{Depth: 1, Shots: 5, ExecShots: 5}
	got := sliceShots(j, 10, 200)
	if got < 1 {
		t.Fatalf("sliceShots with no shots remaining = %d, want >= 1", got)
	}
}

func TestSliceShotsDeepCircuitYieldsSmallerSlice(t *testing.T) {
	j := &job.Job{Depth: 100, Shots: 10000}
	got := sliceShots(j, 10, 200)
	want := 20 // floor(10/100*200)
	if got != want {
		t.Fatalf("sliceShots(depth=100) = %d, want %d", got, want)
	}
}
