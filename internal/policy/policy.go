// Package policy implements the pure session policy evaluator.
// Evaluation is deterministic and side-effect free; enforcement actions
// belong to the usecase layer.
package policy

import "github.com/focusgate/focusgate/internal/domain"

// Evaluate decides whether the identified process may run under the given
// session. Precedence: self, then protected, then mode-specific set
// membership. The caller is responsible for never invoking this without an
// active session and for applying the fullscreen bypass upstream.
func Evaluate(identifier string, s *domain.Session) domain.PolicyDecision {
	d := domain.PolicyDecision{Identifier: identifier}

	if identifier == s.SelfIdentifier {
		d.Verdict = domain.VerdictAllow
		d.Reason = domain.ReasonSelf
		return d
	}

	if s.ProtectedIdentifiers[identifier] {
		d.Verdict = domain.VerdictAllow
		d.Reason = domain.ReasonProtected
		return d
	}

	switch s.Mode {
	case domain.ModeAllowList:
		if s.AllowedIdentifiers[identifier] {
			d.Verdict = domain.VerdictAllow
			d.Reason = domain.ReasonInAllowSet
		} else {
			d.Verdict = domain.VerdictDeny
			d.Reason = domain.ReasonNotInAllowSet
		}
	case domain.ModeBlockList:
		if s.BlockedIdentifiers[identifier] {
			d.Verdict = domain.VerdictDeny
			d.Reason = domain.ReasonInBlockSet
		} else {
			d.Verdict = domain.VerdictAllow
			d.Reason = domain.ReasonNotInBlockSet
		}
	}

	return d
}
