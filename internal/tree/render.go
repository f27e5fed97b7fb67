package tree

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// RenderText draws a view as an indented text tree. Nodes with hidden
// children carry a trailing "+", highlighted nodes a leading "*".
func RenderText(v *ViewNode, colorOutput bool) string {
	if v == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%d patterns)\n", v.Abbr, v.Count))
	for k, c := range v.Children {
		renderNode(&sb, c, "", k == len(v.Children)-1, colorOutput)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, v *ViewNode, prefix string, last bool, colorOutput bool) {
	branch, indent := "├── ", "│   "
	if last {
		branch, indent = "└── ", "    "
	}

	mark := ""
	if v.Highlighted {
		mark = "* "
	}

	score := ""
	if v.AvgScore != nil {
		score = fmt.Sprintf(" score %.2f", *v.AvgScore)
	}

	more := ""
	if v.Collapsible {
		more = " +"
	}

	abbr := v.Abbr
	id := fmt.Sprintf("[%s]", v.ID)
	if colorOutput {
		switch {
		case v.Highlighted:
			abbr = color.New(color.FgRed, color.Bold).Sprint(abbr)
		case strings.HasPrefix(v.Abbr, "S"):
			abbr = color.BlueString(abbr)
		case strings.HasPrefix(v.Abbr, "T"):
			abbr = color.YellowString(abbr)
		}
		id = color.HiBlackString(id)
		if more != "" {
			more = color.CyanString(more)
		}
	}

	sb.WriteString(fmt.Sprintf("%s%s%s%s %s ×%d%s %s%s\n", prefix, branch, mark, abbr, v.Label, v.Count, score, id, more))

	for k, c := range v.Children {
		renderNode(sb, c, prefix+indent, k == len(v.Children)-1, colorOutput)
	}
}
