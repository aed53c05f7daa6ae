// Package report composes the benchmark comment body from the two captured
// harness outputs. Composition is a pure function: identical inputs always
// yield a byte-identical message.
package report

import (
	"fmt"
	"strings"
)

const preamble = "Hello! Here are the benchmark results for this pull request."

const statisticalIntro = "Wall-clock timings below come from repeated trials on a " +
	"shared host, so they are affected by concurrent load and should be read as " +
	"indicative only."

const counterIntro = "Instruction and cache-event counts below are deterministic " +
	"and do not depend on host scheduling, so they are the more reliable signal."

// DefaultMaxBlockSize caps each embedded block so the composed comment stays
// under the platform's comment size limit. The original pipeline had no bound,
// which risked oversized comments on verbose harness output.
const DefaultMaxBlockSize = 28000

const truncationMarker = "\n... (output truncated)"

// Report is the composed message. Blocks hold the embedded texts exactly as
// captured, after the defensive size cap.
type Report struct {
	Preamble    string
	Statistical string
	Counter     string
}

// Composer renders reports with a fixed template. The zero MaxBlockSize means
// DefaultMaxBlockSize; a negative value disables truncation.
type Composer struct {
	MaxBlockSize int
}

// Compose builds the report from the counter-based and statistical outputs.
// Content is never altered beyond the size cap; fencing adapts to the content
// so embedded backtick runs round-trip exactly.
func (c Composer) Compose(counterOutput, statisticalOutput string) Report {
	return Report{
		Preamble:    preamble,
		Statistical: c.truncate(statisticalOutput),
		Counter:     c.truncate(counterOutput),
	}
}

// Render produces the final comment body.
func (r Report) Render() string {
	var b strings.Builder

	b.WriteString(r.Preamble)
	b.WriteString("\n\n")
	b.WriteString(statisticalIntro)
	b.WriteString("\n\n")
	b.WriteString(fence(r.Statistical))
	b.WriteString("\n\n")
	b.WriteString(counterIntro)
	b.WriteString("\n\n")
	b.WriteString(fence(r.Counter))
	b.WriteString("\n")

	return b.String()
}

func (c Composer) truncate(s string) string {
	limit := c.MaxBlockSize
	if limit == 0 {
		limit = DefaultMaxBlockSize
	}

	if limit < 0 || len(s) <= limit {
		return s
	}

	return s[:limit] + truncationMarker
}

// fence wraps text in a fixed-width block whose delimiter is one backtick
// longer than the longest backtick run inside, so any content survives
// embedding unchanged.
func fence(text string) string {
	delimiter := strings.Repeat("`", maxBacktickRun(text)+1)
	if len(delimiter) < 3 {
		delimiter = "```"
	}

	// The newline before the closing delimiter is structural, never part of
	// the content, so extraction recovers the embedded text exactly.
	return fmt.Sprintf("%s\n%s\n%s", delimiter, text, delimiter)
}

func maxBacktickRun(s string) int {
	longest, run := 0, 0

	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	return longest
}
