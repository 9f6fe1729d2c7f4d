package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/planguard/internal/governance"
)

// Colors matching the planguard terminal palette.
var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	allowStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	denyStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	badgeStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)

// styles renders text with lipgloss on terminals and as plain text elsewhere.
type styles struct {
	enabled bool
}

func newStyles(enabled bool) styles {
	return styles{enabled: enabled}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func (s styles) title(text string) string   { return s.render(titleStyle, text) }
func (s styles) section(text string) string { return s.render(sectionStyle, text) }
func (s styles) dim(text string) string     { return s.render(dimStyle, text) }
func (s styles) badge(text string) string   { return s.render(badgeStyle, text) }

// decision colors a decision by outcome. Explicit decisions are bold.
func (s styles) decision(d governance.Decision) string {
	style := denyStyle
	if d.Allowed() {
		style = allowStyle
	}
	if d.Explicit() {
		style = style.Bold(true)
	}
	return s.render(style, fmt.Sprintf("%-13s", d.String()))
}

func (s styles) flag(set bool, style lipgloss.Style) string {
	if !set {
		return s.dim("-")
	}
	return s.render(style, "x")
}

func policyTitle(st styles, p *governance.Policy) string {
	title := st.title(p.Key.String())
	if p.ReadOnly {
		title += " " + st.badge("(read-only)")
	}
	return title
}

// renderPolicy formats one policy with its rules.
func renderPolicy(st styles, verb string, p *governance.Policy) string {
	var b strings.Builder

	b.WriteString("\n")
	if verb != "" {
		fmt.Fprintf(&b, "  %s %s\n", verb, policyTitle(st, p))
	} else {
		fmt.Fprintf(&b, "  %s\n", policyTitle(st, p))
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "  %s %s\n", st.dim("Description:"), p.Description)
	}
	if p.Summary != "" {
		fmt.Fprintf(&b, "  %s %s\n", st.dim("Summary:    "), p.Summary)
	}

	b.WriteString("\n")
	if p.Rules.Len() == 0 {
		fmt.Fprintf(&b, "  %s\n\n", st.dim("No rules. Every field falls back to the global default."))
		return b.String()
	}

	fields := p.Rules.Fields()
	width := columnWidth(fields, len("FIELD"))
	fmt.Fprintf(&b, "  %s\n", st.section(fmt.Sprintf("%-*s  ALLOW  DENY", width, "FIELD")))
	for _, field := range fields {
		rule := p.Rules.Get(field)
		fmt.Fprintf(&b, "  %-*s  %s      %s\n", width, field, st.flag(rule.Allow, allowStyle), st.flag(rule.Deny, denyStyle))
	}
	b.WriteString("\n")
	return b.String()
}

// renderPolicyList formats policies as a table.
func renderPolicyList(st styles, policies []governance.Policy) string {
	var b strings.Builder

	b.WriteString("\n")
	if len(policies) == 0 {
		fmt.Fprintf(&b, "  %s\n\n", st.dim("No policies found."))
		return b.String()
	}

	names := make([]string, 0, len(policies))
	for i := range policies {
		names = append(names, policies[i].Key.Name)
	}
	width := columnWidth(names, len("NAME"))

	fmt.Fprintf(&b, "  %s\n", st.section(fmt.Sprintf("%-8s %-*s  %5s  %-9s %s", "PROVIDER", width, "NAME", "RULES", "READ-ONLY", "DESCRIPTION")))
	for i := range policies {
		p := &policies[i]
		readOnly := "no"
		if p.ReadOnly {
			readOnly = "yes"
		}
		fmt.Fprintf(&b, "  %-8s %-*s  %5d  %-9s %s\n",
			p.Key.ProviderKind, width, p.Key.Name, p.Rules.Len(), readOnly, p.Description)
	}
	b.WriteString("\n")
	return b.String()
}

// renderEvaluation formats evaluated fields and a decision summary.
func renderEvaluation(st styles, v EvaluationView) string {
	var b strings.Builder

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", st.title(v.ProviderKind+"/"+v.Policy), st.dim("(default "+v.GlobalDefault.String()+")"))
	b.WriteString("\n")

	if len(v.Decisions) == 0 {
		fmt.Fprintf(&b, "  %s\n\n", st.dim("No fields to evaluate."))
		return b.String()
	}

	fields := make([]string, 0, len(v.Decisions))
	for _, d := range v.Decisions {
		fields = append(fields, d.Field)
	}
	width := columnWidth(fields, len("FIELD"))

	for _, d := range v.Decisions {
		fmt.Fprintf(&b, "  %-*s  %s %s\n", width, d.Field, st.decision(d.Decision), st.dim(d.Description))
	}

	b.WriteString("\n")
	parts := make([]string, 0, len(v.Summary))
	for _, d := range governance.Decisions() {
		if n := v.Summary[d]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, d))
		}
	}
	fmt.Fprintf(&b, "  %s %s\n\n", st.section("Summary:"), strings.Join(parts, ", "))
	return b.String()
}

// renderSeed formats the outcome of seeding.
func renderSeed(st styles, v SeedView) string {
	var b strings.Builder

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s\n\n", st.title("Built-in policies"))
	for _, k := range v.Created {
		fmt.Fprintf(&b, "  %s %s\n", st.render(allowStyle, "created "), k)
	}
	for _, k := range v.Existing {
		fmt.Fprintf(&b, "  %s %s\n", st.dim("exists  "), k)
	}
	for _, k := range v.Shadowed {
		fmt.Fprintf(&b, "  %s %s %s\n", st.badge("shadowed"), k, st.dim("(name taken by a writable policy)"))
	}
	b.WriteString("\n")
	return b.String()
}

func columnWidth(values []string, minWidth int) int {
	width := minWidth
	for _, v := range values {
		if len(v) > width {
			width = len(v)
		}
	}
	return width
}
