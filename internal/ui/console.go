package ui

import (
	"strings"
)

const echoPrefix = "echo:"

// Line is one parsed reply line.
type Line struct {
	Title string
	Value string
	// Plain is set for untitled lines such as rejections
	Plain bool
}

// ParseLine splits an "echo:<Title>#<Value>" reply line.
func ParseLine(s string) Line {
	body := strings.TrimPrefix(s, echoPrefix)
	title, value, ok := strings.Cut(body, "#")
	if !ok {
		return Line{Value: body, Plain: true}
	}
	return Line{Title: title, Value: value}
}

// RenderReply formats reply lines for display. With styled false the lines are
// returned unchanged, one per line.
func RenderReply(lines []string, styled bool) string {
	if !styled {
		if len(lines) == 0 {
			return ""
		}
		return strings.Join(lines, "\n") + "\n"
	}

	var b strings.Builder
	for _, raw := range lines {
		b.WriteString(renderLine(ParseLine(raw)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderLine(l Line) string {
	switch {
	case l.Plain && strings.HasSuffix(l.Value, "is not valid"):
		return ReplyErrorStyle.Render(FailureMarker + " " + l.Value)
	case l.Plain:
		return ReplyValueStyle.Render(l.Value)
	case l.Title == "Warning" || strings.HasPrefix(l.Title, "Saved, to apply"):
		return ReplyWarningStyle.Render(WarningMarker+" "+l.Title+": ") + ReplyValueStyle.Render(l.Value)
	case l.Title == "Services" && l.Value == "Started":
		return ReplyKeyStyle.Render(l.Title) + ReplySuccessStyle.Render(SuccessMarker+" "+l.Value)
	}
	return ReplyKeyStyle.Render(l.Title) + ReplyValueStyle.Render(l.Value)
}

// Prompt returns the interactive prompt
func Prompt(styled bool) string {
	if !styled {
		return "> "
	}
	return PromptStyle.Render("wifid>") + " "
}
