// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package interpreter

import (
	"errors"
	"testing"

	"github.com/probechain/goteal/asm/assembler"
	"github.com/probechain/goteal/avm/config"
	tealerr "github.com/probechain/goteal/avm/errors"
	"github.com/probechain/goteal/avm/ledger"
	"github.com/probechain/goteal/avm/program"
)

func mustAssemble(t *testing.T, src string) []byte {
	t.Helper()
	raw, err := assembler.Assemble("t.teal", src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return raw
}

func newRun(t *testing.T, src string, mode config.RunMode) *Interpreter {
	t.Helper()
	raw := mustAssemble(t, src)
	prog, err := program.Decode(raw, config.MaxSupportedVersion)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	cfg := config.New(mode, prog.Version, 1)
	return New(prog, cfg, ledger.NewMemory())
}

func TestRunApprovesOnNonzeroReturn(t *testing.T) {
	it := newRun(t, "#pragma version 4\nint 1\nint 2\n+\nreturn\n", config.LogicSig)
	res := it.Run()
	if res.State != StateHalted || !res.Approved {
		t.Fatalf("Run() = %+v; want Halted/Approved", res)
	}
}

func TestRunRejectsOnZeroReturn(t *testing.T) {
	it := newRun(t, "#pragma version 4\nint 0\nreturn\n", config.LogicSig)
	res := it.Run()
	if res.State != StateHalted || res.Approved {
		t.Fatalf("Run() = %+v; want Halted/Rejected", res)
	}
}

func TestRunAssertFailure(t *testing.T) {
	it := newRun(t, "#pragma version 4\nint 0\nassert\nint 1\nreturn\n", config.LogicSig)
	res := it.Run()
	if res.State != StateErrored {
		t.Fatalf("Run() = %+v; want Errored", res)
	}
	if !errors.Is(res.Err, tealerr.ErrAssertFailed) {
		t.Fatalf("Run().Err = %v; want ErrAssertFailed", res.Err)
	}
}

func TestRunDivisionByZero(t *testing.T) {
	it := newRun(t, "#pragma version 4\nint 1\nint 0\n/\nreturn\n", config.LogicSig)
	res := it.Run()
	if res.State != StateErrored || !errors.Is(res.Err, tealerr.ErrDivisionByZero) {
		t.Fatalf("Run() = %+v; want Errored/ErrDivisionByZero", res)
	}
}

func TestRunArithmeticOverflow(t *testing.T) {
	src := "#pragma version 4\npushint 18446744073709551615\nint 1\n+\nreturn\n"
	it := newRun(t, src, config.LogicSig)
	res := it.Run()
	if res.State != StateErrored || !errors.Is(res.Err, tealerr.ErrArithmeticOverflow) {
		t.Fatalf("Run() = %+v; want Errored/ErrArithmeticOverflow", res)
	}
}

func TestRunConditionalBranchTaken(t *testing.T) {
	src := "#pragma version 4\nint 1\nbnz approve\nint 0\nreturn\napprove:\nint 1\nreturn\n"
	it := newRun(t, src, config.LogicSig)
	res := it.Run()
	if res.State != StateHalted || !res.Approved {
		t.Fatalf("Run() = %+v; want Halted/Approved via taken branch", res)
	}
}

func TestRunConditionalBranchNotTaken(t *testing.T) {
	src := "#pragma version 4\nint 0\nbnz approve\nint 0\nreturn\napprove:\nint 1\nreturn\n"
	it := newRun(t, src, config.LogicSig)
	res := it.Run()
	if res.State != StateHalted || res.Approved {
		t.Fatalf("Run() = %+v; want Halted/Rejected, branch not taken", res)
	}
}

func TestRunCallSubRetSub(t *testing.T) {
	src := "#pragma version 4\n" +
		"callsub double\n" +
		"return\n" +
		"double:\n" +
		"int 21\n" +
		"int 2\n" +
		"*\n" +
		"retsub\n"
	it := newRun(t, src, config.LogicSig)
	res := it.Run()
	if res.State != StateHalted || !res.Approved {
		t.Fatalf("Run() = %+v; want Halted/Approved (21*2=42 truthy)", res)
	}
}

func TestRunModeErrorInLogicSig(t *testing.T) {
	src := "#pragma version 4\nbyte \"k\"\napp_global_get\nreturn\n"
	it := newRun(t, src, config.LogicSig)
	res := it.Run()
	if res.State != StateErrored || !errors.Is(res.Err, tealerr.ErrModeError) {
		t.Fatalf("Run() = %+v; want Errored/ErrModeError for app-only opcode in LogicSig mode", res)
	}
}

func TestRunAppGlobalGetInApplicationMode(t *testing.T) {
	src := "#pragma version 4\nbyte \"k\"\napp_global_get\npop\nint 1\nreturn\n"
	it := newRun(t, src, config.Application)
	res := it.Run()
	if res.State != StateHalted || !res.Approved {
		t.Fatalf("Run() = %+v; want Halted/Approved in Application mode", res)
	}
}

func TestRunCostBudgetExceeded(t *testing.T) {
	raw := mustAssemble(t, "#pragma version 4\nint 1\nint 2\n+\nreturn\n")
	prog, err := program.Decode(raw, config.MaxSupportedVersion)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.New(config.LogicSig, prog.Version, 1)
	cfg.CostBudget = 1 // not enough for more than one opcode dispatch
	it := New(prog, cfg, ledger.NewMemory())
	res := it.Run()
	if res.State != StateErrored || !errors.Is(res.Err, tealerr.ErrCostBudgetExceeded) {
		t.Fatalf("Run() = %+v; want Errored/ErrCostBudgetExceeded", res)
	}
}

func TestRunErrOpcode(t *testing.T) {
	it := newRun(t, "#pragma version 4\nerr\n", config.LogicSig)
	res := it.Run()
	if res.State != StateErrored || !errors.Is(res.Err, tealerr.ErrExecutionFailed) {
		t.Fatalf("Run() = %+v; want Errored/ErrExecutionFailed", res)
	}
}

func TestRunFallthroughVersionTwoIsError(t *testing.T) {
	it := newRun(t, "#pragma version 2\nint 1\n", config.LogicSig)
	res := it.Run()
	if res.State != StateErrored {
		t.Fatalf("Run() = %+v; want Errored on fall-through past version 1", res)
	}
}

func TestStepTracesEveryInstruction(t *testing.T) {
	it := newRun(t, "#pragma version 4\nint 1\nint 2\n+\nreturn\n", config.LogicSig)
	steps := 0
	for {
		_, done := it.Step()
		steps++
		if done {
			break
		}
		if steps > 100 {
			t.Fatal("Step() never reached a terminal state")
		}
	}
	if it.Stack().Len() == 0 && it.PC() == 0 {
		t.Fatal("sanity: interpreter state never advanced")
	}
}

func TestStepMatchesRunResult(t *testing.T) {
	src := "#pragma version 4\nint 1\nint 2\n+\nreturn\n"
	runRes := newRun(t, src, config.LogicSig).Run()

	stepIt := newRun(t, src, config.LogicSig)
	var stepRes Result
	for {
		res, done := stepIt.Step()
		if done {
			stepRes = res
			break
		}
	}
	if stepRes.State != runRes.State || stepRes.Approved != runRes.Approved {
		t.Fatalf("Step() terminal result %+v != Run() result %+v", stepRes, runRes)
	}
}

func TestCallStackOverflow(t *testing.T) {
	var b []byte
	b = append(b, []byte("#pragma version 4\ncallsub a\nreturn\n")...)
	// Build a chain of subroutines deeper than MaxCallDepth, each calling the next.
	src := "#pragma version 4\ncallsub a0\nreturn\n"
	for i := 0; i < 10; i++ {
		src += sub(i)
	}
	src += "a10:\nint 1\nretsub\n"
	it := newRun(t, src, config.LogicSig)
	res := it.Run()
	if res.State != StateErrored || !errors.Is(res.Err, tealerr.ErrCallStackOverflow) {
		t.Fatalf("Run() = %+v; want Errored/ErrCallStackOverflow", res)
	}
	_ = b
}

func sub(i int) string {
	return "a" + itoa(i) + ":\ncallsub a" + itoa(i+1) + "\nretsub\n"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}
