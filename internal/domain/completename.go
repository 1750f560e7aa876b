package domain

import "strings"

// CompleteNameSeparator joins the names of a tree path.
const CompleteNameSeparator = " > "

// SplitCompleteName splits a path on ">" and drops blank segments, so
// " foo >   > bar > " yields [foo bar].
func SplitCompleteName(completename string) []string {
	var parts []string
	for _, p := range strings.Split(completename, ">") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// JoinCompleteName builds the stored form of a path.
func JoinCompleteName(parts ...string) string {
	return strings.Join(parts, CompleteNameSeparator)
}

// ChildCompleteName appends name below parent's completename.
func ChildCompleteName(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + CompleteNameSeparator + name
}
