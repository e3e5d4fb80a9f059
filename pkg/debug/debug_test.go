package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func withDebug(t *testing.T) *bytes.Buffer {
	t.Helper()
	was := Enabled()
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	t.Cleanup(func() { SetEnabled(was) })
	return &buf
}

func TestLogWhenEnabled(t *testing.T) {
	buf := withDebug(t)

	Log("descend %q", "History")
	LogTiming("tree fetch", 12*time.Millisecond)
	LogEnterExit("Load")()

	out := buf.String()
	for _, want := range []string{prefix, `descend "History"`, "tree fetch took 12ms", "-> Load", "<- Load"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q:\n%s", want, out)
		}
	}
}

func TestSilentWhenDisabled(t *testing.T) {
	buf := withDebug(t)
	SetEnabled(false)

	Log("hidden")
	LogTiming("hidden", time.Second)
	LogEnterExit("hidden")()
	Assert(false, "not checked when disabled")

	if buf.Len() != 0 {
		t.Errorf("disabled debug should write nothing, got %q", buf.String())
	}
}

func TestAssertPanics(t *testing.T) {
	withDebug(t)
	defer func() {
		if recover() == nil {
			t.Error("a failed assertion should panic while debugging")
		}
	}()
	Assert(false, "cursor depth mismatch")
}
