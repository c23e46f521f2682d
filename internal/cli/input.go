// Package cli handles cmd line input and prints category and topic
// suggestions, for exploring the autocomplete index by hand.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/newsinsight/newsserve/internal/utils"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

// Completer is the part of suggest.Service the REPL drives.
type Completer interface {
	EnsureAndMatch(ctx context.Context, field suggest.Field, prefix string) ([]string, error)
	Refresh(ctx context.Context, field suggest.Field) error
	Stats() []suggest.Stats
}

// InputHandler reads prefixes line by line and prints the matches for the
// selected field. Lines starting with ':' are commands (see handleCommand).
type InputHandler struct {
	completer       Completer
	field           suggest.Field
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	noFilter        bool
	requestCount    int

	in  io.Reader
	out *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer Completer, field suggest.Field, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		completer:       completer,
		field:           field,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
		in:              os.Stdin,
		out:             log.NewWithOptions(os.Stderr, log.Options{}),
	}
}

// SetIO replaces stdin and stderr, mostly for tests.
func (h *InputHandler) SetIO(in io.Reader, out io.Writer) {
	h.in = in
	h.out = log.NewWithOptions(out, log.Options{})
}

// Start runs the loop until EOF, ":quit" or ctx is cancelled.
func (h *InputHandler) Start(ctx context.Context) error {
	h.out.Print("NewsServe completion CLI")
	h.out.Printf("field: %s. type a prefix and press Enter, :help for commands (Ctrl+C to exit):", h.field)

	scanner := bufio.NewScanner(h.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.out.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if err := h.handleCommand(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				h.out.Printf("error: %v", err)
			}
			continue
		}
		h.handleInput(ctx, line)
	}
}

// handleInput validates the prefix and prints the matches for the current
// field, at most suggestLimit of them.
func (h *InputHandler) handleInput(ctx context.Context, prefix string) {
	h.requestCount++

	if !utils.PrefixLengthOK(prefix, h.minPrefixLength, h.maxPrefixLength) {
		h.out.Printf("Prefix length out of range [%d, %d]: %s", h.minPrefixLength, h.maxPrefixLength, prefix)
		return
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter {
		if !utils.IsValidPrefix(prefix) {
			h.out.Printf("No results found for prefix: '%s'", prefix)
			return
		}
	} else {
		log.Debug("Input filtering disabled")
	}

	start := time.Now()
	log.Debug("Processing request for", "field", h.field, "prefix", prefix)

	suggestions, err := h.completer.EnsureAndMatch(ctx, h.field, prefix)
	if err != nil {
		h.out.Printf("Completion failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(suggestions) == 0 {
		h.out.Printf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	total := len(suggestions)
	if h.suggestLimit > 0 && total > h.suggestLimit {
		suggestions = suggestions[:h.suggestLimit]
	}
	h.out.Printf("Found %s %s suggestions for prefix '%s':", utils.FormatWithCommas(int64(total)), h.field, prefix)
	for i, s := range suggestions {
		h.out.Printf("%2d. %s", i+1, fmt.Sprintf("\033[38;5;75m%s\033[0m", s))
	}
	if total > len(suggestions) {
		h.out.Printf("... and %d more", total-len(suggestions))
	}
}
