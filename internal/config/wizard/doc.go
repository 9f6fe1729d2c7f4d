// Package wizard provides the interactive prompts of the planguard CLI.
//
// RunWizard walks through the store backend and default decisions and
// returns a WizardResult; BuildConfig turns it into a config.Config and
// WriteConfig writes planguard.yaml. RunPolicyWizard collects the fields of
// a new policy. All forms use charmbracelet/huh.
package wizard
