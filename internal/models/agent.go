package models

import (
	"time"

	"github.com/google/uuid"
)

type AgentType string

const (
	AgentTypeVideo             AgentType = "video"
	AgentTypeTVChannel         AgentType = "tv_channel"
	AgentTypeRealityShow       AgentType = "reality_show"
	AgentTypeTheatricalRelease AgentType = "theatrical_release"
	AgentTypeOTTRelease        AgentType = "ott_release"
	AgentTypeMatchSchedule     AgentType = "match_schedule"
)

type RunState string

const (
	RunStateIdle      RunState = "idle"
	RunStateRunning   RunState = "running"
	RunStateSucceeded RunState = "succeeded"
	RunStateFailed    RunState = "failed"
)

type SourceKind string

const (
	SourceKindFeed    SourceKind = "feed"
	SourceKindChannel SourceKind = "channel"
	SourceKindListing SourceKind = "listing"
)

// AgentDefinition is one configured agent from the catalog file. Type picks
// the pipeline, SourceKind picks the adapter; the rest parameterizes both.
type AgentDefinition struct {
	ID             string     `yaml:"id" json:"id"`
	Type           AgentType  `yaml:"type" json:"type"`
	SourceKind     SourceKind `yaml:"source_kind" json:"source_kind"`
	SourceURL      string     `yaml:"source_url" json:"source_url"`
	Category       string     `yaml:"category" json:"category"`
	GroupTitle     string     `yaml:"group_title" json:"group_title,omitempty"`
	Language       string     `yaml:"language" json:"language,omitempty"`
	WorkflowStatus string     `yaml:"workflow_status" json:"workflow_status"`
}

type RunError struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type RunSummary struct {
	Fetched int        `json:"fetched"`
	Created int        `json:"created"`
	Skipped int        `json:"skipped"`
	Errors  []RunError `json:"errors"`
}

func (summary *RunSummary) AddError(title, reason string) {
	summary.Errors = append(summary.Errors, RunError{Title: title, Reason: reason})
}

type AgentRun struct {
	AgentID    string      `json:"agent_id"`
	AgentType  AgentType   `json:"agent_type"`
	RequestID  string      `json:"request_id"`
	State      RunState    `json:"state"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Summary    *RunSummary `json:"summary,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func NewAgentRun(agentID string, agentType AgentType) *AgentRun {
	return &AgentRun{
		AgentID:   agentID,
		AgentType: agentType,
		RequestID: uuid.New().String(),
		State:     RunStateRunning,
		StartedAt: time.Now(),
		Summary:   &RunSummary{Errors: []RunError{}},
	}
}

func (run *AgentRun) MarkSucceeded() {
	run.State = RunStateSucceeded
	now := time.Now()
	run.FinishedAt = &now
}

func (run *AgentRun) MarkFailed(err error) {
	run.State = RunStateFailed
	now := time.Now()
	run.FinishedAt = &now
	if err != nil {
		run.Error = err.Error()
	}
}

func (run *AgentRun) Duration() time.Duration {
	if run.FinishedAt != nil {
		return run.FinishedAt.Sub(run.StartedAt)
	}
	return time.Since(run.StartedAt)
}
