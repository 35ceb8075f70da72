// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package interpreter is the AVM fetch-decode-execute loop (spec.md §4.F):
// stack discipline, branch resolution, scratch space, subroutine frames,
// and cost accounting, dispatched through the avm/opcodes registry.
package interpreter

import (
	"encoding/binary"

	"github.com/probechain/goteal/avm/config"
	tealerr "github.com/probechain/goteal/avm/errors"
	"github.com/probechain/goteal/avm/ledger"
	"github.com/probechain/goteal/avm/opcodes"
	"github.com/probechain/goteal/avm/program"
	"github.com/probechain/goteal/avm/value"
)

// State is the run's coarse lifecycle state (spec.md §4.F "State machine of
// a run").
type State uint8

const (
	StateReady State = iota
	StateRunning
	StateHalted
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateHalted:
		return "Halted"
	default:
		return "Errored"
	}
}

// Result is the terminal outcome of a run.
type Result struct {
	State    State
	Approved bool  // valid only when State == StateHalted
	Err      error // valid only when State == StateErrored; always a *tealerr.RuntimeError
	PC       int
	CostUsed uint64
	Delta    ledger.StateDelta
}

// Interpreter executes one decoded Program under one Config against one
// Ledger. It is not reentrant-safe for concurrent Step calls on the same
// instance, but distinct Interpreter instances share no state (spec.md §5).
type Interpreter struct {
	prog   *program.Program
	cfg    config.Config
	ledger ledger.Ledger

	stack   *value.Stack
	scratch *value.Scratch
	calls   *value.CallStack
	pool    value.ConstPool

	pc          int
	remaining   int64 // signed so "would go negative" is a simple comparison
	state       State
	delta       ledger.StateDelta
	lastLog     []byte
	lastVerdict bool
}

// New constructs an Interpreter ready to run prog under cfg. The program's
// version must already satisfy cfg.Version (spec.md §4.G); Decode is where
// that check happens.
func New(prog *program.Program, cfg config.Config, lg ledger.Ledger) *Interpreter {
	return &Interpreter{
		prog:      prog,
		cfg:       cfg,
		ledger:    lg,
		stack:     value.NewStack(),
		scratch:   value.NewScratch(),
		calls:     value.NewCallStack(),
		pool:      value.ConstPool{},
		state:     StateReady,
		remaining: int64(cfg.CostBudget),
	}
}

// Stack exposes the operand stack for host-side introspection (e.g. a
// `--show-stack` CLI flag); it must not be mutated by callers.
func (it *Interpreter) Stack() *value.Stack { return it.stack }

// PC returns the current program counter.
func (it *Interpreter) PC() int { return it.pc }

// RemainingCost returns the cost budget left, clamped to zero.
func (it *Interpreter) RemainingCost() uint64 {
	if it.remaining < 0 {
		return 0
	}
	return uint64(it.remaining)
}

// Run drives the dispatch loop to a terminal Result: halted, errored, or
// (never) still running.
func (it *Interpreter) Run() Result {
	it.state = StateRunning
	for it.state == StateRunning {
		if res, done := it.runOneStep(); done {
			return res
		}
	}
	return it.terminalResult()
}

// Step executes exactly one instruction and reports whether the run has
// reached a terminal state, for callers that want to trace pc/stack between
// instructions (e.g. the CLI's --step flag). The first call transitions a
// fresh Interpreter from Ready to Running.
func (it *Interpreter) Step() (Result, bool) {
	if it.state == StateReady {
		it.state = StateRunning
	}
	if it.state != StateRunning {
		return it.terminalResult(), true
	}
	return it.runOneStep()
}

// runOneStep executes one instruction, reporting the terminal Result and
// true if that instruction ended the run.
func (it *Interpreter) runOneStep() (Result, bool) {
	if err := it.step(); err != nil {
		it.state = StateErrored
		re, ok := err.(*tealerr.RuntimeError)
		if !ok {
			re = tealerr.At(it.pc, "", err)
		}
		return Result{State: StateErrored, Err: re, PC: it.pc, CostUsed: it.costUsed(), Delta: it.delta}, true
	}
	if it.state != StateRunning {
		return it.terminalResult(), true
	}
	return Result{}, false
}

func (it *Interpreter) terminalResult() Result {
	return Result{
		State:    it.state,
		Approved: it.lastVerdict,
		PC:       it.pc,
		CostUsed: it.costUsed(),
		Delta:    it.delta,
	}
}

func (it *Interpreter) costUsed() uint64 {
	used := int64(it.cfg.CostBudget) - it.remaining
	if used < 0 {
		return 0
	}
	return uint64(used)
}

// step fetches, decodes, cost-checks, type-checks, and executes exactly one
// instruction (spec.md §4.F dispatch loop, steps 1-7).
func (it *Interpreter) step() error {
	if it.pc == it.prog.Len() {
		// Fall-off-the-end: version 1 treats this as an implicit return of
		// the top-of-stack truthiness; version >= 2 requires an explicit
		// `return` and fall-through is an error (spec.md §4.F step 1,
		// §9 Open Questions).
		if it.prog.Version == 1 {
			top, err := it.stack.Top()
			if err != nil {
				return tealerr.At(it.pc, "<fallthrough>", err)
			}
			it.lastVerdict = top.Truthy()
			it.state = StateHalted
			return nil
		}
		return tealerr.At(it.pc, "<fallthrough>", tealerr.ErrExecutionFailed)
	}

	op := opcodes.Opcode(it.prog.Code[it.pc])
	spec, ok := opcodes.Lookup(op)
	if !ok || spec.MinVersion > it.prog.Version {
		return tealerr.At(it.pc, "<unknown>", tealerr.ErrInvalidOpcode)
	}

	imm, nextPC, err := it.decodeImmediate(spec)
	if err != nil {
		return tealerr.At(it.pc, spec.Name, err)
	}

	if !modeAllows(it.cfg.RunMode, spec.Mode) {
		return tealerr.At(it.pc, spec.Name, tealerr.ErrModeError)
	}

	if err := it.checkOperandTypes(spec); err != nil {
		return tealerr.At(it.pc, spec.Name, err)
	}

	it.remaining -= int64(spec.Cost)
	if it.remaining < 0 {
		return tealerr.At(it.pc, spec.Name, tealerr.ErrCostBudgetExceeded)
	}

	it.cfg.Log().Debug("dispatch", "pc", it.pc, "op", spec.Name, "cost", spec.Cost, "remaining", it.remaining)

	curPC := it.pc
	it.pc = nextPC
	outcome, err := it.execute(op, imm, curPC, nextPC)
	if err != nil {
		return tealerr.At(curPC, spec.Name, err)
	}
	switch outcome.kind {
	case outcomeContinue:
		// pc already advanced to nextPC.
	case outcomeBranch:
		if !it.prog.ValidBranchTarget(outcome.target) {
			return tealerr.At(curPC, spec.Name, tealerr.ErrBranchOutOfBounds)
		}
		it.pc = outcome.target
	case outcomeHalt:
		it.lastVerdict = outcome.verdict
		it.state = StateHalted
	}
	return nil
}

func modeAllows(run config.RunMode, want opcodes.Mode) bool {
	switch want {
	case opcodes.Any:
		return true
	case opcodes.LogicSigOnly:
		return run == config.LogicSig
	case opcodes.ApplicationOnly:
		return run == config.Application
	default:
		return false
	}
}

// checkOperandTypes validates the top len(spec.Pops) stack values against
// their required types without popping (spec.md §4.F step 5). TypeAny
// matches either shape.
func (it *Interpreter) checkOperandTypes(spec opcodes.Spec) error {
	n := len(spec.Pops)
	if it.stack.Len() < n {
		return tealerr.ErrStackUnderflow
	}
	for i, want := range spec.Pops {
		if want == opcodes.TypeAny {
			continue
		}
		v, err := it.stack.Peek(n - 1 - i)
		if err != nil {
			return err
		}
		if opcodes.ValueType(v) != want {
			return tealerr.ErrTypeError
		}
	}
	return nil
}

// decodedImm carries every possible immediate shape; only the fields
// relevant to the dispatched opcode are populated.
type decodedImm struct {
	u1, u2   uint64
	offset   int16
	offsets  []int16
	bytes    []byte
	intArr   []uint64
	byteArr  [][]byte
}

func (it *Interpreter) decodeImmediate(spec opcodes.Spec) (decodedImm, int, error) {
	pc := it.pc
	rest := it.prog.Code[pc+1:]
	var d decodedImm

	switch spec.Immediates {
	case opcodes.ImmNone:
		return d, pc + 1, nil

	case opcodes.ImmUint8:
		if len(rest) < 1 {
			return d, 0, tealerr.ErrTruncatedProgram
		}
		d.u1 = uint64(rest[0])
		return d, pc + 2, nil

	case opcodes.ImmUint8x2:
		if len(rest) < 2 {
			return d, 0, tealerr.ErrTruncatedProgram
		}
		d.u1 = uint64(rest[0])
		d.u2 = uint64(rest[1])
		return d, pc + 3, nil

	case opcodes.ImmLabel:
		if len(rest) < 2 {
			return d, 0, tealerr.ErrTruncatedProgram
		}
		d.offset = int16(binary.BigEndian.Uint16(rest[:2]))
		return d, pc + 3, nil

	case opcodes.ImmLabelArr:
		if len(rest) < 1 {
			return d, 0, tealerr.ErrTruncatedProgram
		}
		count := int(rest[0])
		need := 1 + count*2
		if len(rest) < need {
			return d, 0, tealerr.ErrTruncatedProgram
		}
		d.offsets = make([]int16, count)
		for i := 0; i < count; i++ {
			off := 1 + i*2
			d.offsets[i] = int16(binary.BigEndian.Uint16(rest[off : off+2]))
		}
		return d, pc + 1 + need, nil

	case opcodes.ImmVarUint:
		val, n := binary.Uvarint(rest)
		if n <= 0 {
			return d, 0, tealerr.ErrTruncatedProgram
		}
		d.u1 = val
		return d, pc + 1 + n, nil

	case opcodes.ImmLenBytes:
		length, n := binary.Uvarint(rest)
		if n <= 0 || uint64(len(rest)-n) < length {
			return d, 0, tealerr.ErrTruncatedProgram
		}
		d.bytes = rest[n : n+int(length)]
		return d, pc + 1 + n + int(length), nil

	case opcodes.ImmVarUintArr:
		count, n := binary.Uvarint(rest)
		if n <= 0 {
			return d, 0, tealerr.ErrTruncatedProgram
		}
		off := n
		vals := make([]uint64, 0, count)
		for i := uint64(0); i < count; i++ {
			if off >= len(rest) {
				return d, 0, tealerr.ErrTruncatedProgram
			}
			v, vn := binary.Uvarint(rest[off:])
			if vn <= 0 {
				return d, 0, tealerr.ErrTruncatedProgram
			}
			vals = append(vals, v)
			off += vn
		}
		d.intArr = vals
		return d, pc + 1 + off, nil

	case opcodes.ImmBytesArr:
		count, n := binary.Uvarint(rest)
		if n <= 0 {
			return d, 0, tealerr.ErrTruncatedProgram
		}
		off := n
		arr := make([][]byte, 0, count)
		for i := uint64(0); i < count; i++ {
			length, ln := binary.Uvarint(rest[off:])
			if ln <= 0 {
				return d, 0, tealerr.ErrTruncatedProgram
			}
			off += ln
			if uint64(len(rest)-off) < length {
				return d, 0, tealerr.ErrTruncatedProgram
			}
			arr = append(arr, rest[off:off+int(length)])
			off += int(length)
		}
		d.byteArr = arr
		return d, pc + 1 + off, nil

	default:
		return d, pc + 1, nil
	}
}

// outcomeKind mirrors spec.md §4.D's ControlOutcome.
type outcomeKind uint8

const (
	outcomeContinue outcomeKind = iota
	outcomeBranch
	outcomeHalt
)

type outcome struct {
	kind    outcomeKind
	target  int
	verdict bool
}

func cont() (outcome, error)              { return outcome{kind: outcomeContinue}, nil }
func branchTo(pc int) (outcome, error)     { return outcome{kind: outcomeBranch, target: pc}, nil }
func halt(verdict bool) (outcome, error)   { return outcome{kind: outcomeHalt, verdict: verdict}, nil }
func fail(err error) (outcome, error)      { return outcome{}, err }
