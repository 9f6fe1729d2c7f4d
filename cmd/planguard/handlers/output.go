package handlers

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mattn/go-isatty"
	"sigs.k8s.io/yaml"

	"github.com/imamik/planguard/internal/bootstrap"
	"github.com/imamik/planguard/internal/governance"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// OutputFormats lists the values accepted by --output.
func OutputFormats() []string {
	return []string{OutputText, OutputJSON, OutputYAML}
}

// isInteractive reports whether stdout is a terminal. Replaced in tests.
var isInteractive = isInteractiveTTY

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// printer writes command results as styled text, JSON or YAML.
type printer struct {
	format string
	styled bool
}

func newPrinter(output string) (*printer, error) {
	switch output {
	case "", OutputText:
		return &printer{format: OutputText, styled: isInteractive()}, nil
	case OutputJSON, OutputYAML:
		return &printer{format: output}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (must be one of %v)", output, OutputFormats())
	}
}

// emit writes v as JSON or YAML, or the result of text in text mode.
func (p *printer) emit(v any, text func(st styles) string) error {
	switch p.format {
	case OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	case OutputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = stdout.Write(data)
		return err
	default:
		_, err := fmt.Fprint(stdout, text(newStyles(p.styled)))
		return err
	}
}

// PolicyView is the machine-readable form of a policy.
type PolicyView struct {
	ProviderKind    string                          `json:"providerKind"`
	Name            string                          `json:"name"`
	Description     string                          `json:"description,omitempty"`
	Summary         string                          `json:"summary,omitempty"`
	ReadOnly        bool                            `json:"readOnly"`
	Rules           map[string]governance.FieldRule `json:"rules,omitempty"`
	ResourceVersion string                          `json:"resourceVersion,omitempty"`
	UID             string                          `json:"uid,omitempty"`
	CreatedAt       *time.Time                      `json:"createdAt,omitempty"`
}

func newPolicyView(p *governance.Policy) PolicyView {
	v := PolicyView{
		ProviderKind:    p.Key.ProviderKind.String(),
		Name:            p.Key.Name,
		Description:     p.Description,
		Summary:         p.Summary,
		ReadOnly:        p.ReadOnly,
		ResourceVersion: p.ResourceVersion,
		UID:             p.UID,
	}
	if p.Rules.Len() > 0 {
		v.Rules = map[string]governance.FieldRule(p.Rules.Clone())
	}
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt.UTC()
		v.CreatedAt = &t
	}
	return v
}

// FieldDecisionView is one evaluated field.
type FieldDecisionView struct {
	Field       string              `json:"field"`
	Allow       bool                `json:"allow"`
	Deny        bool                `json:"deny"`
	Decision    governance.Decision `json:"decision"`
	Description string              `json:"description"`
}

// EvaluationView is the result of the evaluate command.
type EvaluationView struct {
	ProviderKind  string                      `json:"providerKind"`
	Policy        string                      `json:"policy"`
	GlobalDefault governance.Decision         `json:"globalDefault"`
	Decisions     []FieldDecisionView         `json:"decisions"`
	Summary       map[governance.Decision]int `json:"summary"`
}

func newEvaluationView(key governance.PolicyKey, globalDefault governance.Decision, decisions []governance.FieldDecision) EvaluationView {
	v := EvaluationView{
		ProviderKind:  key.ProviderKind.String(),
		Policy:        key.Name,
		GlobalDefault: globalDefault,
		Decisions:     make([]FieldDecisionView, 0, len(decisions)),
		Summary:       governance.Summarize(decisions),
	}
	for _, fd := range decisions {
		v.Decisions = append(v.Decisions, FieldDecisionView{
			Field:       fd.Field,
			Allow:       fd.Rule.Allow,
			Deny:        fd.Rule.Deny,
			Decision:    fd.Decision,
			Description: fd.Decision.Description(),
		})
	}
	return v
}

// SeedView reports the outcome of the seed command.
type SeedView struct {
	Created  []string `json:"created"`
	Existing []string `json:"existing"`
	Shadowed []string `json:"shadowed,omitempty"`
}

func newSeedView(res bootstrap.Result) SeedView {
	return SeedView{
		Created:  keyStrings(res.Created),
		Existing: keyStrings(res.Existing),
		Shadowed: keyStrings(res.Shadowed),
	}
}

func keyStrings(keys []governance.PolicyKey) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}

// DeletedView reports a deleted policy.
type DeletedView struct {
	ProviderKind string `json:"providerKind"`
	Name         string `json:"name"`
	Deleted      bool   `json:"deleted"`
}
