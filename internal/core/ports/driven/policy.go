package driven

// URLFilter decides whether an item URL should be harvested.
type URLFilter interface {
	Matches(url string) bool
}

// FilterBuilder compiles include/exclude patterns into a URLFilter.
// An invalid pattern is a *domain.ConfigError.
type FilterBuilder interface {
	Build(include, exclude []string) (URLFilter, error)
}

// FieldEvaluator runs one field-mapping expression against a set of variables.
// Failures are reported as *domain.EvaluationError.
type FieldEvaluator interface {
	Evaluate(expression string, vars map[string]any) (any, error)
}
