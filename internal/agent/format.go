package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newsinsight/newsserve/internal/utils"
	"github.com/newsinsight/newsserve/pkg/model"
)

// contentPreviewRunes is how much of each article body a query result shows.
const contentPreviewRunes = 100

// FormatResults renders query rows as Markdown for the agent.
func FormatResults(rows []model.Headline) string {
	if len(rows) == 0 {
		return "No matching news found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d news:\n\n", len(rows))
	for _, r := range rows {
		fmt.Fprintf(&b, "**%s**\n", r.Headline)
		fmt.Fprintf(&b, "Category: %s | Topic: %s\n", r.Category, r.Topic)
		fmt.Fprintf(&b, "%s\n\n", previewContent(r.Content))
	}
	return b.String()
}

func previewContent(content string) string {
	if content == "" {
		return "[empty content]"
	}
	return utils.TruncateRunes(content, contentPreviewRunes)
}

func formatJSON(data map[string]any) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}
