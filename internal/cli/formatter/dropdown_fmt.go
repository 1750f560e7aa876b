package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/pager"
	"github.com/dustin/go-humanize"
)

// FormatResults renders a page of options as a tree followed by the row count.
func FormatResults(title string, res *contract.Results) string {
	var b strings.Builder
	b.WriteString(Header(title) + "\n")
	if len(res.Results) == 0 {
		b.WriteString(Dim("No results.") + "\n")
		return b.String()
	}
	b.WriteString(RenderTree(OptionTree(res.Results)))
	b.WriteString(Dim(fmt.Sprintf("%s %s", humanize.Comma(int64(res.Count)), plural(res.Count, "row", "rows"))) + "\n")
	return b.String()
}

// FormatConnect renders connectable devices grouped by entity.
func FormatConnect(title string, res *contract.ConnectResults) string {
	var b strings.Builder
	b.WriteString(Header(title) + "\n")
	if len(res.Results) == 0 {
		b.WriteString(Dim("No devices available.") + "\n")
		return b.String()
	}
	b.WriteString(RenderTree(OptionTree(res.Results)))
	return b.String()
}

// FormatName renders a resolved label with its comment in a box.
func FormatName(res *contract.NameResult) string {
	if res.Comment == "" {
		return Bold(res.Name) + "\n"
	}
	return RenderBox(res.Name, res.Comment) + "\n"
}

// FormatLanguages renders the language catalog, marking the selected one.
func FormatLanguages(langs []contract.LanguageOption) string {
	rows := make([][]string, 0, len(langs))
	for _, l := range langs {
		mark := ""
		if l.Selected {
			mark = StyleGreen.Render("●")
		}
		rows = append(rows, []string{mark, l.Code, l.Name})
	}
	return RenderTable([]string{"", "CODE", "LANGUAGE"}, rows)
}

// FormatListPage renders a plain listing with its pager line.
func FormatListPage(itemtype string, page *contract.ListPage) string {
	var b strings.Builder
	b.WriteString(Header(itemtype) + "\n")

	rows := make([][]string, 0, len(page.Items))
	for _, it := range page.Items {
		rows = append(rows, []string{strconv.FormatInt(it.ID, 10), it.Name, it.Entity, it.Comment})
	}
	b.WriteString(RenderTable([]string{"ID", "NAME", "ENTITY", "COMMENT"}, rows, 0))
	b.WriteString(Dim(PagerLine(page.Window)) + "\n")
	return b.String()
}

// PagerLine describes the rows shown and where the neighbouring pages start.
func PagerLine(w pager.Window) string {
	if w.Total == 0 {
		return "No rows."
	}
	parts := []string{fmt.Sprintf("%s-%s of %s",
		humanize.Comma(int64(w.CurrentStart)), humanize.Comma(int64(w.CurrentEnd)), humanize.Comma(int64(w.Total)))}
	if w.HasPrevious {
		parts = append(parts, fmt.Sprintf("previous: --start %d", w.Back))
	}
	if w.HasNext {
		parts = append(parts, fmt.Sprintf("next: --start %d", w.Forward), fmt.Sprintf("last: --start %d", w.End))
	}
	return strings.Join(parts, "  ·  ")
}

// FormatCounts renders name/count pairs, such as a seed summary.
func FormatCounts(title string, names []string, counts []int) string {
	rows := make([][]string, 0, len(names))
	for i, name := range names {
		rows = append(rows, []string{name, humanize.Comma(int64(counts[i]))})
	}
	return Header(title) + "\n" + RenderTable([]string{"KIND", "ROWS"}, rows, 1)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
