package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
)

// AgentCatalog holds the configured agents, keyed by id. The catalog is
// loaded once at startup; the dispatcher treats it as read-only.
type AgentCatalog struct {
	agents map[string]models.AgentDefinition
}

type catalogFile struct {
	Agents []models.AgentDefinition `yaml:"agents"`
}

func LoadAgentCatalog(path string) (*AgentCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse agent catalog: %w", err)
	}

	return NewAgentCatalog(file.Agents)
}

func NewAgentCatalog(defs []models.AgentDefinition) (*AgentCatalog, error) {
	agents := make(map[string]models.AgentDefinition, len(defs))
	for _, def := range defs {
		if err := ValidateAgent(def); err != nil {
			return nil, err
		}
		if _, exists := agents[def.ID]; exists {
			return nil, models.NewValidationError("DUPLICATE_AGENT_ID", "Agent id appears twice in the catalog").
				WithMetadata("agent_id", def.ID)
		}
		agents[def.ID] = def
	}
	return &AgentCatalog{agents: agents}, nil
}

func ValidateAgent(def models.AgentDefinition) error {
	if def.ID == "" {
		return models.NewValidationError("MISSING_AGENT_ID", "Agent definition has no id")
	}
	switch def.Type {
	case models.AgentTypeVideo, models.AgentTypeTVChannel, models.AgentTypeRealityShow,
		models.AgentTypeTheatricalRelease, models.AgentTypeOTTRelease, models.AgentTypeMatchSchedule:
	default:
		return models.NewValidationError("UNKNOWN_AGENT_TYPE", "Agent type is not recognized").
			WithMetadata("agent_id", def.ID).WithMetadata("type", string(def.Type))
	}
	if def.SourceURL == "" {
		return models.NewValidationError("MISSING_SOURCE_URL", "Agent definition has no source URL").
			WithMetadata("agent_id", def.ID)
	}
	if def.Category == "" {
		return models.NewValidationError("MISSING_CATEGORY", "Agent definition has no category").
			WithMetadata("agent_id", def.ID)
	}
	if !models.WorkflowStatus(def.WorkflowStatus).Valid() {
		return models.NewValidationError("INVALID_WORKFLOW_STATUS", "Workflow status must be in_review, ready_to_publish or published").
			WithMetadata("agent_id", def.ID).WithMetadata("workflow_status", def.WorkflowStatus)
	}
	switch def.Type {
	case models.AgentTypeVideo, models.AgentTypeTVChannel, models.AgentTypeRealityShow:
		if def.GroupTitle == "" {
			return models.NewValidationError("MISSING_GROUP_TITLE", "Aggregating agents need a group title").
				WithMetadata("agent_id", def.ID)
		}
	}
	return nil
}

func (catalog *AgentCatalog) Get(agentID string) (models.AgentDefinition, bool) {
	def, ok := catalog.agents[agentID]
	return def, ok
}

func (catalog *AgentCatalog) Len() int {
	return len(catalog.agents)
}

func (catalog *AgentCatalog) All() []models.AgentDefinition {
	defs := make([]models.AgentDefinition, 0, len(catalog.agents))
	for _, def := range catalog.agents {
		defs = append(defs, def)
	}
	return defs
}
