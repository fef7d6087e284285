// ABOUTME: Entry point for msu-mcp, the MCP server for MSU transaction queries
// ABOUTME: Dispatches subcommands for the stdio, HTTP, and NATS transports plus helpers

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/msu-mcp/internal/config"
	"github.com/2389/msu-mcp/internal/errcodes"
	"github.com/2389/msu-mcp/internal/mcp"
	"github.com/2389/msu-mcp/internal/msu"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _ __ ___  ___ _   _       _ __ ___   ___ _ __  
| '_ ' _ \/ __| | | |_____| '_ ' _ \ / __| '_ \ 
| | | | | \__ \ |_| |_____| | | | | | (__| |_) |
|_| |_| |_|___/\__,_|     |_| |_| |_|\___| .__/ 
                                         |_|    
`

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: msu-mcp [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve                       Serve MCP over stdin/stdout (default)")
	fmt.Fprintln(w, "  http                        Serve MCP over Streamable HTTP")
	fmt.Fprintln(w, "  nats                        Serve MCP over NATS request/reply")
	fmt.Fprintln(w, "  tools                       Print the tool descriptors as JSON")
	fmt.Fprintln(w, "  codes                       List the known MSU error codes")
	fmt.Fprintln(w, "  init                        Create a new config file interactively")
	fmt.Fprintln(w, "  token --sub NAME [--ttl D]  Mint a bearer token for the HTTP transport")
	fmt.Fprintln(w, "  version                     Print the version")
}

func main() {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch command {
	case "serve":
		err = runServe(ctx)
	case "http":
		err = runHTTP(ctx)
	case "nats":
		err = runNATS(ctx)
	case "tools":
		err = runTools(os.Stdout)
	case "codes":
		err = runCodes(os.Stdout)
	case "init":
		err = runInit(os.Stdin, os.Stdout)
	case "token":
		err = runToken(os.Args[2:], os.Stdout)
	case "version":
		fmt.Printf("msu-mcp %s\n", version)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		usage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printBanner writes the banner and startup details to w, which is stderr in
// every serving mode so stdout stays free for the protocol.
func printBanner(w io.Writer, configPath string, details [][2]string) {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	cyan.Fprint(w, banner)
	gray.Fprintf(w, "    version: %s\n\n", version)

	if configPath == "" {
		configPath = "(none, using defaults and environment)"
	}
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "%-10s %s\n", "Config:", configPath)
	for _, d := range details {
		green.Fprint(w, "    ▶ ")
		fmt.Fprintf(w, "%-10s %s\n", d[0]+":", d[1])
	}
	fmt.Fprintln(w)
}

// runTools prints the tool list exactly as tools/list reports it.
func runTools(w io.Writer) error {
	d, err := mcp.NewDispatcher(mcp.DispatcherConfig{
		Gateway:    offlineGateway{},
		ErrorCodes: errcodes.Default(),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(mcp.MCPListToolsResult{Tools: d.ListTools()})
}

// offlineGateway satisfies mcp.Gateway for commands that never call out.
type offlineGateway struct{}

func (offlineGateway) Query(context.Context, msu.Form) (any, error) {
	return nil, fmt.Errorf("gateway not configured")
}

// runCodes lists the error-code table the server would use.
func runCodes(w io.Writer) error {
	cfg, _, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	table, err := loadErrorCodes(cfg)
	if err != nil {
		return err
	}
	printCodes(w, table)
	return nil
}

func printCodes(w io.Writer, table *errcodes.Table) {
	yellow := color.New(color.FgYellow)

	for _, code := range table.Codes() {
		text, _ := table.Lookup(code)
		yellow.Fprint(w, code)
		fmt.Fprintf(w, "  %s\n", text)
	}
	fmt.Fprintf(w, "\n%d codes\n", table.Len())
}
