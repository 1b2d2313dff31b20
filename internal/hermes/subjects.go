package hermes

const (
	SubjectRuleBaseReload = "suitability.rulebase.reload"

	StreamName   = "SUITABILITY_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectEvaluationComputed(id string) string  { return "suitability.evaluation." + id + ".computed" }
func SubjectEvaluationDefaulted(id string) string { return "suitability.evaluation." + id + ".defaulted" }

func SubjectRuleBaseReloaded(revision string) string {
	return "suitability.rulebase." + revision + ".reloaded"
}
