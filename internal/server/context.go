package server

import (
	"github.com/giantswarm/chatbot-qa/internal/runner"
	"github.com/giantswarm/chatbot-qa/internal/store"
)

// DefaultMaxRunsPerList is used when ServerContext.MaxRunsPerList is unset.
const DefaultMaxRunsPerList = 20

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	Store        *store.Store
	Orchestrator *runner.Orchestrator

	// MaxRunsPerList bounds list_test_runs responses.
	MaxRunsPerList int
}

// RunsLimit returns the effective list limit.
func (sc *ServerContext) RunsLimit() int {
	if sc.MaxRunsPerList > 0 {
		return sc.MaxRunsPerList
	}
	return DefaultMaxRunsPerList
}
