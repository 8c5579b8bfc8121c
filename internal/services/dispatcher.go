package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kit2552/tadka-cms-final-sub001/internal/config"
	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
	"github.com/kit2552/tadka-cms-final-sub001/internal/store"
)

// Dispatcher routes a run request to the pipeline for the agent's type and
// guarantees at most one concurrent run per agent id. The pipeline table is
// built once here; request handling never mutates it.
type Dispatcher struct {
	catalog   *config.AgentCatalog
	registry  *RunRegistry
	store     store.ContentStore
	pipelines map[models.AgentType]Pipeline
	logger    *logger.Logger
	startTime time.Time
}

func NewDispatcher(
	catalog *config.AgentCatalog,
	registry *RunRegistry,
	contentStore store.ContentStore,
	dedup *DedupService,
	groups *GroupService,
	adapters AdapterSet,
	log *logger.Logger,
) *Dispatcher {
	articlePipeline := &contentPipeline{
		adapters:    adapters,
		materialize: dedup.MaterializeArticle,
		groups:      groups,
		logger:      log,
	}
	releasePipeline := &contentPipeline{
		adapters:    adapters,
		materialize: dedup.MaterializeRelease,
		logger:      log,
	}
	schedulePipeline := &contentPipeline{
		adapters:    adapters,
		materialize: dedup.MaterializeSchedule,
		logger:      log,
	}

	dispatcher := &Dispatcher{
		catalog:  catalog,
		registry: registry,
		store:    contentStore,
		pipelines: map[models.AgentType]Pipeline{
			models.AgentTypeVideo:             articlePipeline,
			models.AgentTypeTVChannel:         articlePipeline,
			models.AgentTypeRealityShow:       articlePipeline,
			models.AgentTypeTheatricalRelease: releasePipeline,
			models.AgentTypeOTTRelease:        releasePipeline,
			models.AgentTypeMatchSchedule:     schedulePipeline,
		},
		logger:    log,
		startTime: time.Now(),
	}

	log.Info("Dispatcher initialized successfully",
		"agents_configured", catalog.Len(),
		"pipeline_types", len(dispatcher.pipelines))

	return dispatcher
}

// Start runs the agent's pipeline once. Unknown agents and agents already
// in flight short-circuit before any pipeline work; every other fault
// degrades to a partial-success summary unless the source yielded nothing.
func (dispatcher *Dispatcher) Start(ctx context.Context, agentID string) (*models.AgentRun, error) {
	def, ok := dispatcher.catalog.Get(agentID)
	if !ok {
		return nil, models.ErrAgentNotFound.WithMetadata("agent_id", agentID)
	}

	pipeline, ok := dispatcher.pipelines[def.Type]
	if !ok {
		return nil, models.NewInternalError("NO_PIPELINE", "No pipeline registered for agent type").
			WithMetadata("agent_type", string(def.Type))
	}

	if !dispatcher.registry.TryAcquire(agentID) {
		return nil, models.ErrAgentRunning.WithMetadata("agent_id", agentID)
	}
	defer dispatcher.registry.Release(agentID)

	run := models.NewAgentRun(agentID, def.Type)
	dispatcher.logger.LogAgentRun(agentID, "run_started", 0, nil)

	err := dispatcher.executePipeline(ctx, pipeline, def, run.Summary)
	if err != nil {
		run.MarkFailed(err)
	} else {
		run.MarkSucceeded()
	}

	if saveErr := dispatcher.store.SaveAgentRun(ctx, run); saveErr != nil {
		dispatcher.logger.WithError(saveErr).Error("Failed to persist run summary", "agent_id", agentID)
	}

	dispatcher.logger.LogAgentRun(agentID, "run_"+string(run.State), run.Duration(), err)
	if err != nil {
		return run, err
	}
	return run, nil
}

// executePipeline converts a pipeline panic into a failed run so that the
// single-flight slot is always released and the caller still gets an error
// instead of a crashed process.
func (dispatcher *Dispatcher) executePipeline(ctx context.Context, pipeline Pipeline, def models.AgentDefinition, summary *models.RunSummary) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = models.NewInternalError("PIPELINE_PANIC", "Pipeline terminated abnormally").
				WithCause(fmt.Errorf("%v", recovered))
		}
	}()
	return pipeline.Execute(ctx, def, summary)
}

// Status reports whether a run for the agent is currently in flight. Pure
// read, no side effects.
func (dispatcher *Dispatcher) Status(agentID string) (bool, error) {
	if _, ok := dispatcher.catalog.Get(agentID); !ok {
		return false, models.ErrAgentNotFound.WithMetadata("agent_id", agentID)
	}
	return dispatcher.registry.IsRunning(agentID), nil
}

// LastRun returns the persisted summary of the most recent run.
func (dispatcher *Dispatcher) LastRun(ctx context.Context, agentID string) (*models.AgentRun, error) {
	if _, ok := dispatcher.catalog.Get(agentID); !ok {
		return nil, models.ErrAgentNotFound.WithMetadata("agent_id", agentID)
	}
	return dispatcher.store.GetAgentRun(ctx, agentID)
}

func (dispatcher *Dispatcher) ActiveRunsCount() int {
	return dispatcher.registry.ActiveCount()
}

func (dispatcher *Dispatcher) GetStats() map[string]any {
	return map[string]any{
		"service":        "dispatcher",
		"uptime_seconds": time.Since(dispatcher.startTime).Seconds(),
		"active_runs":    dispatcher.registry.ActiveCount(),
		"agents":         dispatcher.catalog.Len(),
		"pipeline_types": len(dispatcher.pipelines),
	}
}
