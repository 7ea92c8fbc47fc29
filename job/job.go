package job

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Mode selects how successive slice results are folded into the
// running Memory result of a Job.
//
// The zero value is inferred from the shape of the first successful
// slice's Memory field: an object infers aggregation, an array infers
// sequence. An explicit Mode overrides this for object-shaped Memory
// (aggregation, max, min); sequence only applies to array-shaped Memory.
type Mode uint8

const (
	// Unset defers to shape-based inference (aggregation for objects,
	// sequence for arrays).
	Unset Mode = iota

	// Aggregation sums per-key counts across slices. Default for
	// object-shaped Memory.
	Aggregation

	// Sequence concatenates array-shaped Memory in arrival order.
	// Jobs using Sequence may not have more than one slice in flight
	// at a time (see Dispatcher).
	Sequence

	// Max keeps the per-key maximum count across slices.
	Max

	// Min keeps the per-key minimum count across slices.
	Min
)

func modeToString(m Mode) string {
	switch m {
	case Aggregation:
		return "aggregation"
	case Sequence:
		return "sequence"
	case Max:
		return "max"
	case Min:
		return "min"
	default:
		return ""
	}
}

func modeFromString(s string) (Mode, error) {
	switch s {
	case "", "unset":
		return Unset, nil
	case "aggregation":
		return Aggregation, nil
	case "sequence":
		return Sequence, nil
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	default:
		return 0, errUnknownMode(s)
	}
}

type errUnknownMode string

func (e errUnknownMode) Error() string {
	return "unknown mode: " + string(e)
}

// ParseMode converts a string representation of a Mode into its typed
// value. An error is returned for unrecognized strings.
func ParseMode(s string) (Mode, error) {
	return modeFromString(s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(modeToString(m)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := modeFromString(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// String returns the canonical string representation of the mode.
func (m Mode) String() string {
	return modeToString(m)
}

// Job is a user submission of QASM circuit source, tracked through
// admission, dispatch, and completion.
//
// Id, Source, Qubits, Depth, Shots, and Mode are fixed at submission
// time and never change. ExecShots, VExecShots, and Result are changed
// only by the Executor owning the current slice. The Dispatcher sets
// Status to Running when it hands the job to an Executor, writing the
// other three back unchanged; later Status changes come from that
// Executor.
//
// CreatedTime and UpdatedTime record admission and last-mutation
// timestamps respectively.
type Job struct {
	Id uuid.UUID

	Source string
	Qubits int
	Depth  int
	Shots  int
	Mode   Mode

	ExecShots  int
	VExecShots int
	Result     json.RawMessage

	Status Status

	CreatedTime time.Time
	UpdatedTime time.Time
}

// Done reports whether the job has reached a terminal state.
func (j *Job) Done() bool {
	return j.Status == Succeeded || j.Status == Failed
}
