// Package interactive provides the interactive console of sdc-provider.
package interactive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/sdc-protocol/sdc-go/pkg/inspect"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
	"github.com/sdc-protocol/sdc-go/pkg/service"
	"github.com/sdc-protocol/sdc-go/pkg/wire"
)

// Console handles interactive mode for sdc-provider.
type Console struct {
	mu  sync.RWMutex
	p   *service.Provider
	rl  *readline.Instance
	out io.Writer
}

// New creates a console reading from the terminal. Attach a provider
// before calling Run.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sdc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl, out: rl.Stdout()}, nil
}

// newConsole creates a console without a terminal writing to out.
func newConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Attach binds the console to p and displays its invocation reports.
func (c *Console) Attach(p *service.Provider) {
	c.mu.Lock()
	c.p = p
	c.mu.Unlock()
	p.OnEvent(c.handleEvent)
}

// Stdout returns a writer that coordinates with the readline prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Stderr returns a writer that coordinates with the readline prompt.
// Use it for log output.
func (c *Console) Stderr() io.Writer {
	if c.rl != nil {
		return c.rl.Stderr()
	}
	return c.out
}

// Run starts the command loop. cancel is called when the user quits.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if quit := c.Execute(ctx, line); quit {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns true when the user asked to
// quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "status":
		c.cmdStatus()
	case "tree", "t":
		c.cmdTree(args)
	case "read", "r":
		c.cmdRead(args)
	case "ops", "o":
		c.cmdOps()
	case "set", "s":
		c.cmdSet(ctx, args)
	case "activate", "a":
		c.cmdActivate(ctx, args)
	case "mode":
		c.cmdMode(ctx, args)
	case "save":
		c.cmdSave(ctx)
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
SDC Provider Commands:
  Inspection:
    status               - Show sequence id, MDIB version and state
    tree [-v]            - Show the descriptor tree (-v adds versions)
    read <path>          - Read a descriptor, state or field
    ops                  - List operations

  Operations:
    set <handle> <value> - Invoke a set operation
    activate <handle> [args...]
                         - Invoke an activate operation
    mode <handle> <En|Dis|NA>
                         - Set the operating mode of an operation
    save                 - Save a snapshot to the configured store

  General:
    help                 - Show this help
    quit                 - Exit

  Path Format:
    handle[/state[/contextHandle]][/Field...]
    e.g. numeric.ch0.vmd0/state/MetricValue or lc0/state/lc0.initial

  Set Values:
    Numbers and strings are given as is. State arguments are JSON node
    objects or lists of them.`)
}

func (c *Console) provider() *service.Provider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.p
}

// inspector returns an inspector of the running MDIB or prints why there is
// none.
func (c *Console) inspector() *inspect.Inspector {
	p := c.provider()
	if p == nil || p.Mdib() == nil {
		fmt.Fprintln(c.out, "Provider not started")
		return nil
	}
	return inspect.NewInspector(p.Mdib())
}

func (c *Console) cmdStatus() {
	p := c.provider()
	if p == nil {
		fmt.Fprintln(c.out, "No provider attached")
		return
	}
	fmt.Fprintf(c.out, "State:       %s\n", p.State())
	if m := p.Mdib(); m != nil {
		fmt.Fprintf(c.out, "SequenceID:  %s\n", m.SequenceID())
		fmt.Fprintf(c.out, "MdibVersion: %d\n", m.MdibVersion())
		fmt.Fprintf(c.out, "Operations:  %d\n", len(p.Registry().Operations()))
		fmt.Fprintf(c.out, "Restored:    %t\n", p.Restored())
	}
}

func (c *Console) cmdTree(args []string) {
	insp := c.inspector()
	if insp == nil {
		return
	}
	tree, err := insp.Tree()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	f := inspect.NewFormatter()
	f.ShowVersions = len(args) > 0 && args[0] == "-v"
	fmt.Fprint(c.out, f.FormatTree(tree))
}

func (c *Console) cmdRead(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: read <path>")
		fmt.Fprintln(c.out, "  Example: read numeric.ch0.vmd0/state/MetricValue")
		return
	}
	insp := c.inspector()
	if insp == nil {
		return
	}
	path, err := inspect.ParsePath(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid path: %v\n", err)
		return
	}
	n, err := insp.Read(path)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(c.out, inspect.NewFormatter().FormatNode(n))
}

func (c *Console) cmdOps() {
	insp := c.inspector()
	if insp == nil {
		return
	}
	fmt.Fprint(c.out, inspect.NewFormatter().FormatOperations(insp.Operations()))
}

func (c *Console) cmdSet(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: set <handle> <value>")
		fmt.Fprintln(c.out, "  Example: set op.set.numeric.ch0.vmd0 42")
		return
	}
	c.invoke(ctx, args[0], parseValue(strings.Join(args[1:], " ")))
}

func (c *Console) cmdActivate(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: activate <handle> [args...]")
		return
	}
	c.invoke(ctx, args[0], args[1:])
}

func (c *Console) invoke(ctx context.Context, handle string, value any) {
	p := c.provider()
	if p == nil || p.Registry() == nil {
		fmt.Fprintln(c.out, "Provider not started")
		return
	}
	op, ok := p.Registry().OperationByHandle(handle)
	if !ok {
		fmt.Fprintf(c.out, "Unknown operation: %s\n", handle)
		return
	}
	if op.Kind() == sco.KindActivate {
		if _, isList := value.([]string); !isList {
			value = []string{fmt.Sprint(value)}
		}
	}
	arg, err := wire.ArgumentFromValue(p.Mdib().Registry(), op.Kind(), value)
	if err != nil {
		fmt.Fprintf(c.out, "Invalid argument: %v\n", err)
		return
	}

	info, err := p.Registry().HandleRequest(ctx, sco.Request{
		OperationHandle: handle,
		Kind:            op.Kind(),
		Argument:        arg,
		Source:          "console",
	})
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%s: transaction %d %s", handle, info.TransactionID, info.State)
	if info.Error != "" {
		fmt.Fprintf(c.out, " %s (%s)", info.Error, info.ErrorMessage)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) cmdMode(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.out, "Usage: mode <handle> <En|Dis|NA>")
		return
	}
	mode := pmtypes.OperatingMode(args[1])
	if !mode.Valid() {
		fmt.Fprintf(c.out, "Invalid operating mode: %s\n", args[1])
		return
	}
	p := c.provider()
	if p == nil || p.Registry() == nil {
		fmt.Fprintln(c.out, "Provider not started")
		return
	}
	op, ok := p.Registry().OperationByHandle(args[0])
	if !ok {
		fmt.Fprintf(c.out, "Unknown operation: %s\n", args[0])
		return
	}
	if err := op.SetOperatingMode(ctx, mode); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "%s: %s\n", args[0], mode)
}

func (c *Console) cmdSave(ctx context.Context) {
	p := c.provider()
	if p == nil {
		fmt.Fprintln(c.out, "No provider attached")
		return
	}
	if err := p.SaveSnapshot(ctx); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Snapshot saved")
}

// handleEvent prints invocation progress and snapshot events.
func (c *Console) handleEvent(event service.Event) {
	switch event.Type {
	case service.EventInvocation:
		r := event.Report
		if r == nil || r.TransactionID == 0 {
			return
		}
		fmt.Fprintf(c.out, "  [tr %d] %s %s", r.TransactionID, r.OperationHandle, r.State)
		if r.Error != "" {
			fmt.Fprintf(c.out, " %s", r.Error)
			if r.ErrorMessage != "" {
				fmt.Fprintf(c.out, " (%s)", r.ErrorMessage)
			}
		}
		fmt.Fprintf(c.out, " @%d\n", r.MdibVersion)
	case service.EventSnapshotSaved:
		fmt.Fprintf(c.out, "  [snapshot] MdibVersion %d\n", event.MdibVersion)
	}
}

// parseValue reads JSON when possible and falls back to the raw text.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return strings.Trim(s, "\"'")
}
