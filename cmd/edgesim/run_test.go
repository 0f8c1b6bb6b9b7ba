package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/michcald/gpioirq"
)

func init() {
	gpioirq.SetLogger(nil)
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("edgesim %v failed: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestRunBurstServicesInPinOrder(t *testing.T) {
	out := execute(t, "run",
		"--attach", "29:rising", "--attach", "3:rising", "--attach", "17:rising",
		"--burst",
		"--edge", "29:rising", "--edge", "17:rising", "--edge", "3:rising",
		"--timeout", "1s",
	)

	for _, want := range []string{
		"serviced: P3/rising P17/rising P29/rising\n",
		"stats: dispatches=1 serviced=3 unhandled=0 spurious=0\n",
		"signal: taken\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRunLabScenario(t *testing.T) {
	out := execute(t, "run",
		"--attach", "29:rising", "--attach", "30:falling",
		"--edge", "29:rising", "--edge", "30:rising", "--edge", "30:falling",
	)

	for _, want := range []string{
		"latched P29 rising\n",
		"ignored P30 rising: edge not enabled\n",
		"latched P30 falling\n",
		"serviced: P29/rising P30/falling\n",
		"signal: taken\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRunForcedBits(t *testing.T) {
	out := execute(t, "run",
		"--attach", "7:rising",
		"--force", "7:falling", "--force", "5:rising",
		"--timeout", "10ms",
	)

	for _, want := range []string{
		"stats: dispatches=1 serviced=0 unhandled=1 spurious=1\n",
		"signal: timeout\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRunMaskedDeliversOnArm(t *testing.T) {
	out := execute(t, "run",
		"--attach", "1:falling", "--masked",
		"--edge", "1:falling", "--edge", "1:falling",
	)

	if !strings.Contains(out, "stats: dispatches=1 serviced=1") {
		t.Errorf("Expected one dispatch after arming:\n%s", out)
	}
}

func TestParsePinEdge(t *testing.T) {
	tests := []struct {
		in   string
		pin  gpioirq.Pin
		edge gpioirq.Edge
		ok   bool
	}{
		{"29:rising", 29, gpioirq.RisingEdge, true},
		{"0:F", 0, gpioirq.FallingEdge, true},
		{"32:rising", 0, gpioirq.NoEdge, false},
		{"4:both", 0, gpioirq.NoEdge, false},
		{"4", 0, gpioirq.NoEdge, false},
	}
	for _, tt := range tests {
		p, e, err := parsePinEdge(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("parsePinEdge(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && (p != tt.pin || e != tt.edge) {
			t.Errorf("parsePinEdge(%q) = %s %s", tt.in, p, e)
		}
	}
}
