package xerrors

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

type stackCarrier interface{ StackPCs() []uintptr }

func stackOf(t *testing.T, err error) []uintptr {
	t.Helper()
	var hs stackCarrier
	if !errors.As(err, &hs) {
		t.Fatalf("error %v carries no stack", err)
	}
	return hs.StackPCs()
}

func TestNew_CapturesCallSite(t *testing.T) {
	err := New("boom")
	if err.Error() != "boom" {
		t.Fatalf("Error() = %q", err.Error())
	}

	pcs := stackOf(t, err)
	if len(pcs) == 0 {
		t.Fatal("empty stack")
	}
	// the first frame is this test
	frame := frameName(pcs[0])
	if !strings.Contains(frame, "TestNew_CapturesCallSite") {
		t.Fatalf("top frame = %q, want the call site", frame)
	}
}

func TestWithStack_NilPassthrough(t *testing.T) {
	if WithStack(nil) != nil {
		t.Fatal("WithStack(nil) != nil")
	}
	if EnsureTrace(nil) != nil {
		t.Fatal("EnsureTrace(nil) != nil")
	}
	if Wrap(nil, "m") != nil {
		t.Fatal("Wrap(nil) != nil")
	}
	if Wrapf(nil, "m %d", 1) != nil {
		t.Fatal("Wrapf(nil) != nil")
	}
}

func TestEnsureTrace_Idempotent(t *testing.T) {
	err := New("once")
	if got := EnsureTrace(err); got != err {
		t.Fatal("EnsureTrace re-wrapped an error that already has a stack")
	}

	plain := errors.New("plain")
	traced := EnsureTrace(plain)
	if traced == plain {
		t.Fatal("EnsureTrace did not attach a stack to a plain error")
	}
	if !errors.Is(traced, plain) {
		t.Fatal("traced error lost its identity")
	}
}

func TestWrap_MessageAndUnwrap(t *testing.T) {
	inner := errors.New("root")
	err := Wrap(inner, "while doing work")

	if err.Error() != "while doing work: root" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Fatal("Wrap broke the unwrap chain")
	}
}

func TestWrapf(t *testing.T) {
	inner := errors.New("root")
	err := Wrapf(inner, "attempt %d", 3)
	if err.Error() != "attempt 3: root" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestNewf(t *testing.T) {
	err := Newf("code %d", 7)
	if err.Error() != "code 7" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if len(stackOf(t, err)) == 0 {
		t.Fatal("Newf lost the stack")
	}
}

func frameName(pc uintptr) string {
	frames := runtime.CallersFrames([]uintptr{pc})
	fr, _ := frames.Next()
	if fr.Function == "" {
		return "<unknown>"
	}
	return fr.Function
}
