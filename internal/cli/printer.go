package cli

import (
	"fmt"
	"strings"
	"time"

	"blazehammer/internal/parsers"
	"blazehammer/internal/runner"
	"blazehammer/internal/tui/styles"
)

// Printer formats the artifacts of successful requests through the parser tables.
type Printer struct {
	console *Console
	parsers *parsers.Set
	flags   runner.PrintFlags
}

func NewPrinter(c *Console, set *parsers.Set, flags runner.PrintFlags) *Printer {
	if set == nil {
		set = parsers.Default()
	}

	return &Printer{console: c, parsers: set, flags: flags}
}

// Print is a runner.OutputFunc.
func (p *Printer) Print(ts time.Time, o runner.Outcome) {
	p.console.Print(p.Format(ts, o))
}

// Format renders one block per selected artifact: headers, payload, response.
func (p *Printer) Format(ts time.Time, o runner.Outcome) string {
	var b strings.Builder

	stamp := ts.Format("15:04:05")
	status := o.StatusCode

	block := func(name string, style func(...string) string, body string) {
		fmt.Fprintf(&b, "[%s • %s • %s]\n%s\n",
			styles.Accent.Render(stamp), style(name), styles.Value.Render(fmt.Sprint(status)), body)
	}

	if p.flags.Headers {
		block("Headers", styles.Active.Render, p.parsers.Render(parsers.Headers, status, parsers.HeadersArtifact(o.Headers)))
	}

	if p.flags.Payload {
		block("Payload", styles.Warn.Render, p.parsers.Render(parsers.Payload, status, o.Payload))
	}

	if p.flags.Response {
		var artifact any
		if o.Response != nil {
			artifact = parsers.ResponseArtifact(o.Response.Status, o.Response.Header, o.Response.Body)
		}

		block("Response", styles.Warn.Render, p.parsers.Render(parsers.Response, status, artifact))
	}

	b.WriteString("\n")

	return b.String()
}
