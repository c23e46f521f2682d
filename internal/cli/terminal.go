package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/newsinsight/newsserve/pkg/suggest"
)

var errQuit = errors.New("quit")

const helpText = `commands:
  :field <category|topic>  switch the completed field
  :refresh                 rebuild the current field from the store
  :stats                   show index and cache counters
  :help                    show this text
  :quit                    exit`

// handleCommand runs one ':' command. errQuit ends the loop.
func (h *InputHandler) handleCommand(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	switch parts[0] {
	case ":q", ":quit", ":exit":
		return errQuit

	case ":help":
		h.out.Print(helpText)

	case ":field":
		if len(parts) != 2 {
			return fmt.Errorf("usage: :field <category|topic>")
		}
		field, err := suggest.ParseField(parts[1])
		if err != nil {
			return err
		}
		h.field = field
		h.out.Printf("field: %s", field)

	case ":refresh":
		if err := h.completer.Refresh(ctx, h.field); err != nil {
			return err
		}
		h.out.Printf("%s index refreshed", h.field)

	case ":stats":
		for _, s := range h.completer.Stats() {
			h.out.Printf("%-9s %-8s words=%d cached=%d hits=%d misses=%d queries=%d builds=%d",
				s.Field, s.State, s.Words, s.CacheEntries, s.CacheHits, s.CacheMisses, s.IndexQueries, s.Builds)
		}

	default:
		return fmt.Errorf("unknown command %s, try :help", parts[0])
	}
	return nil
}
