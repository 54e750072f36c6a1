// Package terminal implements the interactive console surface of a
// conversation.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"vertexchat-go/internal/attachment"
	"vertexchat-go/internal/content"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

type lineResult struct {
	line string
	err  error
}

// Prompt reads user input line by line and renders the transcript as a
// Role/Message table.
type Prompt struct {
	out   io.Writer
	lines chan lineResult
	color bool
	// MaxCell truncates long messages in the table; zero disables it.
	MaxCell int
}

// NewPrompt starts reading in. Lines are consumed lazily so a pending
// read can be abandoned when ctx ends.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	p := &Prompt{out: out, lines: make(chan lineResult), MaxCell: 120}
	if f, ok := out.(*os.File); ok {
		p.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	go p.scan(in)
	return p
}

func (p *Prompt) scan(in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		p.lines <- lineResult{line: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		p.lines <- lineResult{err: err}
	}
}

func (p *Prompt) readLine(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.out, label)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-p.lines:
		return strings.TrimRight(res.line, "\r"), res.err
	}
}

// ShowHistory prints one row per turn. Turns without text show "N/A".
func (p *Prompt) ShowHistory(history content.History) {
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tMESSAGE")
	for _, turn := range history {
		msg := strings.Join(strings.Fields(turn.DisplayText()), " ")
		if p.MaxCell > 0 && len([]rune(msg)) > p.MaxCell {
			msg = string([]rune(msg)[:p.MaxCell-1]) + "…"
		}
		if n := turn.BlobCount(); n > 0 {
			msg = fmt.Sprintf("%s [%d file(s)]", msg, n)
		}
		fmt.Fprintf(tw, "%s\t%s\n", turn.Role, msg)
	}
	_ = tw.Flush()
}

// ReadMessage reads the next user message. The line is taken verbatim.
func (p *Prompt) ReadMessage(ctx context.Context) (string, error) {
	return p.readLine(ctx, "You: ")
}

// ConfirmAttach asks whether to upload files. Anything but y/yes is no.
func (p *Prompt) ConfirmAttach(ctx context.Context) (bool, error) {
	answer, err := p.readLine(ctx, "Upload file? [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// PickFiles reads comma separated paths. Entering a directory lists its
// contents and asks again; an empty line selects nothing.
func (p *Prompt) PickFiles(ctx context.Context) ([]string, error) {
	for {
		line, err := p.readLine(ctx, "What files do you want to send to Gemini? ")
		if err != nil {
			return nil, err
		}
		paths := splitPaths(line)
		if len(paths) == 1 {
			if info, statErr := os.Stat(paths[0]); statErr == nil && info.IsDir() {
				entries, listErr := attachment.ListDir(paths[0])
				if listErr != nil {
					p.ShowError(listErr)
					continue
				}
				for _, entry := range entries {
					fmt.Fprintf(p.out, "  %s\n", entry)
				}
				continue
			}
		}
		return paths, nil
	}
}

func (p *Prompt) ShowRejection(message string) {
	p.printError(message)
}

func (p *Prompt) ShowError(err error) {
	if err == nil {
		return
	}
	p.printError("Error: " + err.Error())
}

func (p *Prompt) printError(msg string) {
	if p.color {
		fmt.Fprintf(p.out, "%s%s%s\n", ansiRed, msg, ansiReset)
		return
	}
	fmt.Fprintln(p.out, msg)
}

func splitPaths(line string) []string {
	var out []string
	for _, part := range strings.Split(line, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
