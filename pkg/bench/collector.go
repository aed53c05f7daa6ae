package bench

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateInvocation = errors.New("invocation already collected for harness")
	ErrIncomplete          = errors.New("collector is missing a harness invocation")
)

// Collector accumulates the per-harness invocations of one run. It exists to
// make the "both outputs present" invariant explicit before composition; it
// never transforms captured content.
type Collector struct {
	invocations map[HarnessID]Invocation
}

func NewCollector() *Collector {
	return &Collector{
		invocations: make(map[HarnessID]Invocation),
	}
}

func (c *Collector) Add(inv Invocation) error {
	if !inv.Harness.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownHarness, inv.Harness)
	}

	if _, exists := c.invocations[inv.Harness]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateInvocation, inv.Harness)
	}

	c.invocations[inv.Harness] = inv

	return nil
}

func (c *Collector) Get(id HarnessID) (Invocation, bool) {
	inv, ok := c.invocations[id]

	return inv, ok
}

// Complete reports whether both harness outputs have been collected.
func (c *Collector) Complete() bool {
	_, counter := c.invocations[HarnessCounter]
	_, statistical := c.invocations[HarnessStatistical]

	return counter && statistical
}

// Outputs returns the two captured texts, erroring unless both are present.
func (c *Collector) Outputs() (counter, statistical string, err error) {
	counterInv, ok := c.invocations[HarnessCounter]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrIncomplete, HarnessCounter)
	}

	statisticalInv, ok := c.invocations[HarnessStatistical]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrIncomplete, HarnessStatistical)
	}

	return counterInv.Output, statisticalInv.Output, nil
}
