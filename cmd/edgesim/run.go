package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/michcald/gpioirq"
)

type runOptions struct {
	attach  []string
	edges   []string
	force   []string
	burst   bool
	masked  bool
	timeout time.Duration
}

func newRunCmd() *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Attach handlers, inject edges and dispatch",
		Example: "  edgesim run --attach 29:rising --attach 30:falling --edge 29:rising --edge 30:falling\n" +
			"  edgesim run --attach 3:rising --attach 17:rising --attach 29:rising --burst --edge 29:rising --edge 3:rising --edge 17:rising",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), o)
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&o.attach, "attach", nil, "attach a handler, as pin:edge (edge is rising or falling)")
	f.StringArrayVar(&o.edges, "edge", nil, "inject an edge as pin:edge; only latched if enabled for that pin")
	f.StringArrayVar(&o.force, "force", nil, "force a status bit as pin:edge, bypassing the enable registers")
	f.BoolVar(&o.burst, "burst", false, "latch every edge first and raise the interrupt once")
	f.BoolVar(&o.masked, "masked", false, "inject with the line masked and arm afterwards")
	f.DurationVar(&o.timeout, "timeout", gpioirq.Ticks(1000), "how long the task waits on the signal")
	return cmd
}

func run(w io.Writer, o *runOptions) error {
	bank := gpioirq.NewMemBank()
	line := gpioirq.NewSoftLine()
	port, err := gpioirq.NewPort(gpioirq.Config{Name: "SIM0", Bank: bank, Line: line})
	if err != nil {
		return err
	}

	give, wait := gpioirq.NewSignal()
	var serviced []string
	for _, s := range o.attach {
		p, e, err := parsePinEdge(s)
		if err != nil {
			return err
		}
		tag := p.String() + "/" + e.String()
		h := gpioirq.HandlerFunc(func() {
			serviced = append(serviced, tag)
			give.GiveFromISR()
		})
		if err := port.Attach(p, e, h); err != nil {
			return err
		}
	}

	taken := make(chan bool, 1)
	go func() { taken <- wait.Take(o.timeout) }()

	if !o.masked {
		port.Arm()
	}

	for _, s := range o.force {
		p, e, err := parsePinEdge(s)
		if err != nil {
			return err
		}
		reg := gpioirq.RegStatusRising
		if e == gpioirq.FallingEdge {
			reg = gpioirq.RegStatusFalling
		}
		bank.Force(reg, 1<<p)
		fmt.Fprintf(w, "forced %s %s\n", p, e)
	}
	for _, s := range o.edges {
		p, e, err := parsePinEdge(s)
		if err != nil {
			return err
		}
		if !bank.Latch(p, e) {
			fmt.Fprintf(w, "ignored %s %s: edge not enabled\n", p, e)
			continue
		}
		fmt.Fprintf(w, "latched %s %s\n", p, e)
		if !o.burst {
			line.Raise()
		}
	}
	if o.burst || len(o.edges) == 0 {
		line.Raise()
	}

	if o.masked {
		port.Arm()
	}
	port.Disarm()

	st := port.Stats()
	fmt.Fprintf(w, "serviced: %s\n", strings.Join(serviced, " "))
	fmt.Fprintf(w, "stats: dispatches=%d serviced=%d unhandled=%d spurious=%d\n",
		st.Dispatches, st.Serviced, st.Unhandled, st.Spurious)
	if <-taken {
		fmt.Fprintln(w, "signal: taken")
	} else {
		fmt.Fprintln(w, "signal: timeout")
	}
	return nil
}

func parsePinEdge(s string) (gpioirq.Pin, gpioirq.Edge, error) {
	ps, es, ok := strings.Cut(s, ":")
	if !ok {
		return 0, gpioirq.NoEdge, fmt.Errorf("%q: want pin:edge", s)
	}
	n, err := strconv.ParseUint(ps, 10, 8)
	if err != nil || !gpioirq.Pin(n).Valid() {
		return 0, gpioirq.NoEdge, fmt.Errorf("%q: pin must be 0-%d", s, gpioirq.NumPins-1)
	}
	switch strings.ToLower(es) {
	case "rising", "r":
		return gpioirq.Pin(n), gpioirq.RisingEdge, nil
	case "falling", "f":
		return gpioirq.Pin(n), gpioirq.FallingEdge, nil
	}
	return 0, gpioirq.NoEdge, fmt.Errorf("%q: edge must be rising or falling", s)
}
