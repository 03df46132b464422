// Package interactive provides the interactive command-line interface
// for the modhost management client.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/modhost-project/modhost-go/pkg/inspect"
	"github.com/modhost-project/modhost-go/pkg/surface"
	"github.com/modhost-project/modhost-go/pkg/wire"
)

// Console handles interactive mode for modhost.
type Console struct {
	session Session
	local   *LocalSession // nil when driving a remote surface
	rl      *readline.Instance
}

// completer provides tab completion for the console commands.
var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("list"),
	readline.PcItem("info"),
	readline.PcItem("search"),
	readline.PcItem("get"),
	readline.PcItem("set"),
	readline.PcItem("load"),
	readline.PcItem("unload"),
	readline.PcItem("options"),
	readline.PcItem("log-level",
		readline.PcItem("debug"),
		readline.PcItem("info"),
		readline.PcItem("warn"),
		readline.PcItem("error"),
	),
	readline.PcItem("quit"),
	readline.PcItem("exit"),
)

// New creates a new interactive console over a session. Local-only
// commands are enabled when the session is a LocalSession.
func New(session Session) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "modhost> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	local, _ := session.(*LocalSession)

	return &Console{
		session: session,
		local:   local,
		rl:      rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
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
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "list", "ls", "l":
			c.cmdList()

		case "info", "show", "i":
			c.cmdInfo(args)

		case "get", "read", "g", "r":
			c.cmdGet(args)

		case "set", "write", "s", "w":
			c.cmdSet(args)

		case "search", "find":
			c.cmdSearch(args)

		case "load":
			c.cmdLoad(args)

		case "unload":
			c.cmdUnload(args)

		case "options", "opts":
			c.cmdOptions(args)

		case "log-level":
			c.cmdLogLevel(args)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Modhost Commands:
  Units:
    list                 - List loaded units
    info <unit>          - Show unit metadata and parameters
    search <query>       - Search units by name

  Parameters:
    get <unit/param>     - Read a parameter value
    set <unit/param> <v> - Write a parameter value`)

	if c.local != nil {
		fmt.Fprintln(c.rl.Stdout(), `
  Local Host:
    load <unit>          - Load a built-in unit
    unload <unit>        - Unload a unit
    options <unit>       - Show persistent options for a unit
    options <unit/param> <v> - Persist a parameter override
    log-level <level>    - Change the log level (debug, info, warn, error)`)
	}

	fmt.Fprintln(c.rl.Stdout(), `
  General:
    help                 - Show this help
    quit                 - Exit

  Path Format:
    unit/param - e.g., testunit/test_value (unit.param also works)`)
}

// requireLocal reports whether local-only commands are available.
func (c *Console) requireLocal() bool {
	if c.local == nil {
		fmt.Fprintln(c.rl.Stdout(), "Error: this command needs a local host (run without -connect)")
		return false
	}
	return true
}

// cmdLoad handles the load command.
func (c *Console) cmdLoad(args []string) {
	if !c.requireLocal() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: load <unit>")
		return
	}

	instanceID, err := c.local.Load(args[0])
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Loaded %s (instance %s)\n", args[0], instanceID)
}

// cmdUnload handles the unload command.
func (c *Console) cmdUnload(args []string) {
	if !c.requireLocal() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: unload <unit>")
		return
	}

	if err := c.local.Unload(args[0]); err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Unloaded %s\n", args[0])
}

// cmdOptions handles the options command: with one argument it lists a
// unit's persistent options, with two it persists an override.
func (c *Console) cmdOptions(args []string) {
	if !c.requireLocal() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: options <unit>  |  options <unit/param> <value>")
		return
	}

	if len(args) == 1 {
		opts := c.local.Options(args[0])
		if len(opts) == 0 {
			fmt.Fprintln(c.rl.Stdout(), "No persistent options")
			return
		}
		for _, opt := range opts {
			fmt.Fprintf(c.rl.Stdout(), "  %s = %d  (%s)\n", opt.Param, opt.Value, opt.Source)
		}
		return
	}

	path, err := inspect.ParsePath(args[0])
	if err != nil || path.IsPartial {
		fmt.Fprintln(c.rl.Stdout(), "Error: options set requires a full unit/param path")
		return
	}

	value, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid value: %s (integer required)\n", args[1])
		return
	}

	if err := c.local.SetOption(path.Unit, path.Param, value); err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Persisted %s/%s = %d (applies on next load)\n", path.Unit, path.Param, value)
}

// cmdLogLevel handles the log-level command.
func (c *Console) cmdLogLevel(args []string) {
	if !c.requireLocal() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: log-level <debug|info|warn|error>")
		return
	}

	if err := c.local.SetLogLevel(args[0]); err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Log level set to %s\n", args[0])
}

// cmdList handles the list command.
func (c *Console) cmdList() {
	units, err := c.session.List()
	if err != nil {
		c.printError(err)
		return
	}

	if len(units) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No units loaded")
		return
	}

	for _, u := range units {
		fmt.Fprintf(c.rl.Stdout(), "  %-16s %-10s %d params", u.Name, u.State, u.ParamCount)
		if u.Description != "" {
			fmt.Fprintf(c.rl.Stdout(), "  %s", u.Description)
		}
		fmt.Fprintln(c.rl.Stdout())
	}
}

// cmdInfo handles the info command.
func (c *Console) cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: info <unit>")
		return
	}

	info, err := c.session.Info(args[0])
	if err != nil {
		c.printError(err)
		return
	}

	fmt.Fprint(c.rl.Stdout(), formatInfo(info))
}

// formatInfo renders an info response in modinfo style.
func formatInfo(info *wire.InfoResponsePayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %s\n", "name:", info.Name)
	if info.Author != "" {
		fmt.Fprintf(&sb, "%-12s %s\n", "author:", info.Author)
	}
	if info.Description != "" {
		fmt.Fprintf(&sb, "%-12s %s\n", "description:", info.Description)
	}
	if info.License != "" {
		fmt.Fprintf(&sb, "%-12s %s\n", "license:", info.License)
	}
	if info.Version != "" {
		fmt.Fprintf(&sb, "%-12s %s\n", "version:", info.Version)
	}
	fmt.Fprintf(&sb, "%-12s %s\n", "state:", info.State)
	for _, p := range info.Params {
		fmt.Fprintf(&sb, "%-12s %s = %d (%s)", "parm:", p.Name, p.Value, p.Access)
		if p.Description != "" {
			fmt.Fprintf(&sb, "  %s", p.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// cmdGet handles the get command.
func (c *Console) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: get <unit/param>")
		fmt.Fprintln(c.rl.Stdout(), "  Example: get testunit/test_value")
		return
	}

	path, err := inspect.ParsePath(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid path: %v\n", err)
		return
	}

	if path.IsPartial {
		// Unit only: show all parameters
		info, err := c.session.Info(path.Unit)
		if err != nil {
			c.printError(err)
			return
		}
		for _, p := range info.Params {
			fmt.Fprintf(c.rl.Stdout(), "  %s = %d (%s)\n", p.Name, p.Value, p.Access)
		}
		return
	}

	value, err := c.session.Read(path.Unit, path.Param)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%s = %d\n", path.Param, value)
}

// cmdSet handles the set command.
func (c *Console) cmdSet(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: set <unit/param> <value>")
		fmt.Fprintln(c.rl.Stdout(), "  Example: set testunit/test_value 100")
		return
	}

	path, err := inspect.ParsePath(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid path: %v\n", err)
		return
	}
	if path.IsPartial {
		fmt.Fprintln(c.rl.Stdout(), "Error: set requires a full unit/param path")
		return
	}

	value, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid value: %s (integer required)\n", args[1])
		return
	}

	result, err := c.session.Write(path.Unit, path.Param, value)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%s: %d -> %d\n", path.Param, result.OldValue, result.NewValue)
}

// cmdSearch handles the search command.
func (c *Console) cmdSearch(args []string) {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	units, err := c.session.List()
	if err != nil {
		c.printError(err)
		return
	}

	names := make([]string, 0, len(units))
	byName := make(map[string]wire.UnitSummary, len(units))
	for _, u := range units {
		names = append(names, u.Name)
		byName[u.Name] = u
	}

	matches := inspect.Search(query, names)
	if len(matches) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No matches")
		return
	}

	for _, m := range matches {
		u := byName[m.Name]
		fmt.Fprintf(c.rl.Stdout(), "  %-16s %-10s %d params\n", u.Name, u.State, u.ParamCount)
	}
}

// printError renders host status errors with their status name.
func (c *Console) printError(err error) {
	var statusErr *surface.StatusError
	if errors.As(err, &statusErr) {
		fmt.Fprintf(c.rl.Stdout(), "Error: %s\n", statusErr.Status)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
}
