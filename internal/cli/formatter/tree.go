package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem is a single line of a tree display.
type TreeItem struct {
	Title    string
	Level    int
	IsLast   bool
	Detail   string
	Disabled bool
	Group    bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeSpace  = "   "
)

// RenderTree renders items as an indented tree using box-drawing
// connectors. Detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	badges := make([]string, len(items))
	width := 0
	// open[l] reports whether a later sibling at level l follows.
	open := map[int]bool{}

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for l := 1; l < item.Level; l++ {
				if open[l] {
					prefix += treePipe
				} else {
					prefix += treeSpace
				}
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
			open[item.Level] = !item.IsLast
		}

		title := item.Title
		switch {
		case item.Group:
			title = StyleGroup.Render(title)
		case item.Disabled:
			title = Dim(title)
		}
		contents[idx] = prefix + title
		if item.Detail != "" {
			badges[idx] = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		width = max(width, lipgloss.Width(contents[idx]))
	}

	var b strings.Builder
	for i, content := range contents {
		if badges[i] == "" {
			b.WriteString(content + "\n")
			continue
		}
		pad := max(width-lipgloss.Width(content), 0)
		b.WriteString(content + strings.Repeat(" ", pad) + "  " + badges[i] + "\n")
	}
	return b.String()
}

// OptionTree flattens dropdown options into tree lines. Entity groups
// become top-level headers with their rows one level below; tree levels
// of the rows nest further.
func OptionTree(opts []contract.Option) []TreeItem {
	var items []TreeItem
	var walk func(opts []contract.Option, base int)
	walk = func(opts []contract.Option, base int) {
		for _, o := range opts {
			if o.ID == nil && len(o.Children) > 0 {
				items = append(items, TreeItem{Title: o.Text, Level: base, Group: true})
				walk(o.Children, base+1)
				continue
			}
			level := base
			if o.Level != nil && *o.Level > 1 {
				level += *o.Level - 1
			}
			items = append(items, TreeItem{
				Title:    o.Text,
				Level:    level,
				Detail:   fmt.Sprint(o.ID),
				Disabled: o.Disabled,
			})
		}
	}
	walk(opts, 0)
	markLast(items)
	return items
}

// markLast sets IsLast on every item with no later sibling at its level.
func markLast(items []TreeItem) {
	for i := range items {
		items[i].IsLast = true
		for j := i + 1; j < len(items); j++ {
			if items[j].Level < items[i].Level {
				break
			}
			if items[j].Level == items[i].Level {
				items[i].IsLast = false
				break
			}
		}
	}
}
