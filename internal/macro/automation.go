package macro

import "go.uber.org/zap"

// newAutomationStrategy returns the spreadsheet-application automation
// strategy when a binding exists on the platform. No binding is available
// here, so the chain starts at the ZIP strategy; keeping the constructor in
// the chain preserves the automation-first fallback order for platforms
// that provide one.
func newAutomationStrategy(logger *zap.Logger) Strategy {
	return nil
}
