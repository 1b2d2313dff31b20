package hermes

import "time"

type EvaluationEvent struct {
	EvaluationID string    `json:"evaluation_id"`
	RuleBase     string    `json:"rule_base"`
	CandidateID  string    `json:"candidate_id,omitempty"`
	TaskID       string    `json:"task_id,omitempty"`
	Inputs       []float64 `json:"inputs"`
	Value        float64   `json:"value"`
	Status       string    `json:"status"`
	Warnings     int       `json:"warnings,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

type RuleBaseReloadedEvent struct {
	Name      string    `json:"name"`
	Revision  int       `json:"revision"`
	Rules     int       `json:"rules"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}
