package secret

// ConfidencePolicy combines a pattern's base confidence with the entropy
// evaluation of its captured span into the score attached to a Finding. It
// is a seam: a caller that wants different tuning (a stricter curve, a
// floor, a per-pattern override) can substitute one without touching the
// file scanner that calls it.
type ConfidencePolicy func(base float64, ent EntropyResult) float64

// DefaultConfidencePolicy scales base linearly by the entropy factor
// computed in Evaluate. It is the policy used when none is supplied.
func DefaultConfidencePolicy(base float64, ent EntropyResult) float64 {
	return base * ent.Factor
}
