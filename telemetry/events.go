// Package telemetry provides per-tribe window stats, bookmarks, traces and snapshots.
package telemetry

import (
	"errors"

	"github.com/pthm-cable/tribes/engine"
)

// TraceRecord is one Apply call, as written to trace.csv.
type TraceRecord struct {
	Tick       int32  `csv:"tick"`
	Tribe      int    `csv:"tribe"`
	Node       string `csv:"node"`
	Recipe     string `csv:"recipe"`
	Depth      int    `csv:"depth"`
	Mode       string `csv:"mode"`
	Outcome    string `csv:"outcome"`
	NextStep   int    `csv:"next_step"`
	Wait       int    `csv:"wait"`
	Injections int    `csv:"injections"`
	Attached   int    `csv:"attached"`
	Error      string `csv:"error"`
	ErrorKind  string `csv:"error_kind"`
}

// Error kinds recorded in TraceRecord.ErrorKind.
const (
	ErrorKindOpcode = "unsupported_opcode"
	ErrorKindDepth  = "injection_depth"
	ErrorKindOther  = "other"
)

// NewTraceRecord describes the result of applying node for a tribe.
// attached is how many of the result's injections the tribe accepted.
func NewTraceRecord(tick int32, tribe int, node *engine.TreeNode, res engine.Result, attached int) TraceRecord {
	rec := TraceRecord{
		Tick:       tick,
		Tribe:      tribe,
		Node:       node.ID.String(),
		Recipe:     node.Recipe.Name,
		Depth:      node.Depth,
		Mode:       node.Mode.String(),
		Outcome:    res.Outcome.String(),
		NextStep:   res.NextStep,
		Wait:       res.WaitSeconds,
		Injections: len(res.Injections),
		Attached:   attached,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
		rec.ErrorKind = errorKind(res.Err)
	}
	return rec
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, engine.ErrUnknownOpcode):
		return ErrorKindOpcode
	case errors.Is(err, engine.ErrInjectionDepth):
		return ErrorKindDepth
	default:
		return ErrorKindOther
	}
}
