package cli

import (
	"context"
	"errorwatch/core"
	"errorwatch/models"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

const listPageSize = 20

// CLI is the interactive shell for browsing a collector's stored errors
type CLI struct {
	rl      *readline.Instance
	out     io.Writer
	running bool
	client  *Client
}

// NewCLI connects to the collector at serverURL and prepares the shell
func NewCLI(serverURL string) (*CLI, error) {
	client := NewClient(serverURL)

	if err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %v", err)
	}

	// Ctrl+C is ignored at the prompt; it only stops a running tail.
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("list"),
			readline.PcItem("search"),
			readline.PcItem("show"),
			readline.PcItem("clear"),
			readline.PcItem("tail"),
			readline.PcItem("help"),
			readline.PcItem("exit"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	return &CLI{
		rl:      rl,
		out:     rl.Stdout(),
		running: true,
		client:  client,
	}, nil
}

// Start runs the CLI loop
func (c *CLI) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Fprintln(c.out, "\n⚠ Ctrl+C detected. Please use 'exit' to quit.")
				continue
			}
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

func (c *CLI) printWelcome() {
	writeBanner(c.out, "errorwatch - collector shell", bannerDefaultWidth)
	fmt.Fprintf(c.out, "\nConnected to: %s\n", c.client.baseURL)
	fmt.Fprintln(c.out, "Type 'help' for available commands")
}

// handleCommand routes user commands
func (c *CLI) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		writeHelp(c.out)
	case "list", "ls":
		page := 1
		if len(args) > 0 {
			if p, err := strconv.Atoi(args[0]); err == nil && p > 0 {
				page = p
			}
		}
		c.listErrors(page, nil)
	case "search", "find":
		page, values, err := parseSearchArgs(args)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			fmt.Fprintln(c.out, "Usage: search <keyword> [--path <path>] [page]")
			return
		}
		c.listErrors(page, values)
	case "show", "get":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: show <id>")
			return
		}
		c.showError(args[0])
	case "clear":
		c.clearErrors()
	case "tail", "follow":
		c.tail()
	case "exit", "quit", "q":
		fmt.Fprintln(c.out, "\nGoodbye!")
		c.running = false
	default:
		fmt.Fprintf(c.out, "Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

func writeHelp(w io.Writer) {
	fmt.Fprintln(w)
	writeBanner(w, "Available Commands", bannerDefaultWidth)
	fmt.Fprintln(w)

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"", ""},
		{"STORED ERRORS:", ""},
		{"list [page]", "List stored errors, newest first"},
		{"search <kw> [--path p] [page]", "Search message, path and stack"},
		{"show <id>", "Show one error in full"},
		{"clear", "Delete all stored errors"},
		{"tail", "Follow newly captured errors (Enter to stop)"},
		{"", ""},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if cmd[0] != "" {
			fmt.Fprintf(w, "  %-32s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Fprintln(w)
		}
	}
}

func (c *CLI) listErrors(page int, filters url.Values) {
	result, err := c.client.ListErrors(page, listPageSize, filters)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	writeErrorPage(c.out, result)
}

// writeErrorPage prints a page of stored errors as a table
func writeErrorPage(w io.Writer, result *ErrorsResponse) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No errors captured.")
		return
	}

	pageSize := result.PageSize
	if pageSize <= 0 {
		pageSize = listPageSize
	}
	totalPages := (result.Total + pageSize - 1) / pageSize

	fmt.Fprintln(w)
	writeBanner(w, fmt.Sprintf("Errors (Page %d/%d, Total: %d)", result.Page, totalPages, result.Total), bannerDefaultWidth)
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Received", "Location", "Message")
	for _, rec := range result.Data {
		_ = table.Append([]string{
			rec.ID,
			rec.ReceivedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(location(rec), 30),
			truncate(rec.Message, 60),
		})
	}
	_ = table.Render()

	fmt.Fprintln(w, "\nUse 'show <id>' to view details")
}

func (c *CLI) showError(id string) {
	rec, err := c.client.GetError(id)
	if err != nil {
		fmt.Fprintf(c.out, "Error not found: %s (%v)\n", id, err)
		return
	}
	writeErrorDetail(c.out, rec)
}

// writeErrorDetail prints every field of a stored error
func writeErrorDetail(w io.Writer, rec *models.StoredErrorRead) {
	fmt.Fprintln(w)
	writeBanner(w, "Error "+rec.ID, bannerDefaultWidth)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Received:    %s from %s\n", rec.ReceivedAt.Local().Format("2006-01-02 15:04:05"), rec.RemoteAddr)
	fmt.Fprintf(w, "Type:        %s\n", rec.Type)
	fmt.Fprintf(w, "Message:     %s\n", rec.Message)
	fmt.Fprintf(w, "Location:    %s\n", location(*rec))
	fmt.Fprintf(w, "Column:      %d\n", rec.Column)
	fmt.Fprintf(w, "Viewport:    %s\n", rec.Viewport)
	fmt.Fprintf(w, "Time spent:  %s\n", core.FormatDuration(rec.TimeSpend))
	fmt.Fprintf(w, "Datetime:    %s\n", rec.Datetime)

	fmt.Fprintln(w, "\nStack trace:")
	if len(rec.StackTrace) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, frame := range rec.StackTrace {
		fmt.Fprintf(w, "  %s\n", frame)
	}
}

func (c *CLI) clearErrors() {
	confirm := c.readInput("Clear all stored errors? (yes/no)", "no")
	if strings.ToLower(confirm) != "yes" && strings.ToLower(confirm) != "y" {
		fmt.Fprintln(c.out, "Cancelled.")
		return
	}

	n, err := c.client.ClearErrors()
	if err != nil {
		fmt.Fprintf(c.out, "Error clearing errors: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "✓ Cleared %d stored error(s)\n", n)
}

// tail follows the live stream until the user presses Enter or Ctrl+C
func (c *CLI) tail() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	fmt.Fprintln(c.out, "Following new errors. Press Enter to stop.")
	go func() {
		done <- c.client.Tail(ctx, func(rec models.StoredErrorRead) {
			writeTailLine(c.out, rec)
		})
	}()

	c.rl.SetPrompt("")
	_, _ = c.rl.Readline()
	c.rl.SetPrompt("> ")

	cancel()
	if err := <-done; err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
}

var tailLabel = color.New(color.FgRed, color.Bold)

// writeTailLine prints one streamed error on a single line
func writeTailLine(w io.Writer, rec models.StoredErrorRead) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		rec.ReceivedAt.Local().Format("15:04:05"),
		tailLabel.Sprint(rec.Type),
		location(rec),
		rec.Message,
	)
}

func (c *CLI) readInput(prompt, defaultValue string) string {
	if defaultValue != "" {
		c.rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, defaultValue))
	} else {
		c.rl.SetPrompt(fmt.Sprintf("%s: ", prompt))
	}

	line, err := c.rl.Readline()
	c.rl.SetPrompt("> ")

	if err != nil {
		return defaultValue
	}

	input := strings.TrimSpace(line)
	if input == "" && defaultValue != "" {
		return defaultValue
	}
	return input
}

func location(rec models.StoredErrorRead) string {
	if rec.Path == "" {
		return "-"
	}
	return fmt.Sprintf("%s:%d", rec.Path, rec.Line)
}

// truncate shortens s to at most max runes, marking the cut with "..."
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
