package scoring

import "strings"

// Candidate is a robot (or agent) being considered for a task. The numeric
// fields map onto the rule base's first three inputs; capability is derived
// from the task's requirements.
type Candidate struct {
	ID             string   `json:"id"`
	LoadHistory    float64  `json:"load_history"`
	DistanceToTask float64  `json:"distance_to_task"`
	TotalDistance  float64  `json:"total_distance"`
	Capabilities   []string `json:"capabilities,omitempty"`
}

type Task struct {
	ID                   string   `json:"id,omitempty"`
	RequiredCapabilities []string `json:"required_capabilities,omitempty"`
}

// FactorResult explains how one derived input was computed.
type FactorResult struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// CapabilityMatch returns 1.0 if the candidate has every required capability, 0.0 otherwise.
func CapabilityMatch(task Task, c Candidate) FactorResult {
	if len(task.RequiredCapabilities) == 0 {
		return FactorResult{Name: "capability", Score: 1.0, Reason: "no capabilities required"}
	}
	for _, req := range task.RequiredCapabilities {
		found := false
		for _, cap := range c.Capabilities {
			if strings.EqualFold(cap, req) {
				found = true
				break
			}
		}
		if !found {
			return FactorResult{Name: "capability", Score: 0.0, Reason: "missing: " + req}
		}
	}
	return FactorResult{Name: "capability", Score: 1.0, Reason: "all capabilities matched"}
}

// Inputs lays the candidate out in rule-base input order.
func (c Candidate) Inputs(task Task) []float64 {
	return []float64{c.LoadHistory, c.DistanceToTask, c.TotalDistance, CapabilityMatch(task, c).Score}
}
