package pipeline

import (
	"github.com/christophervuu/flow/internal/agent"
	"github.com/christophervuu/flow/internal/model"
)

// ExpectedAgents returns the agents a run is expected to execute under
// the given options, in pipeline order. The status reconstructor uses
// this as the plan to diff the event log against.
func ExpectedAgents(opts model.PipelineOptions) []string {
	plan := []string{agent.Clarifier}

	switch {
	case opts.UseSpecialists():
		keys, err := agent.ParseSpecialists(opts.SynthSpecialists)
		if err != nil {
			// Unknown keys fail before any stage runs; plan the generic
			// path so status still renders.
			plan = append(plan, agent.Synthesizer)
			break
		}
		for _, key := range keys {
			plan = append(plan, key.AgentName())
		}
		plan = append(plan, agent.Merger)
	case opts.VariantsClamped() > 1:
		for i := 1; i <= opts.VariantsClamped(); i++ {
			plan = append(plan, agent.VariantAgentName(i))
		}
		plan = append(plan, agent.DesignJudge)
	default:
		plan = append(plan, agent.Synthesizer)
	}

	if opts.DeepCritique {
		for _, persona := range agent.Personas {
			plan = append(plan, persona.AgentName())
		}
		plan = append(plan, agent.CritiqueJudge)
	} else {
		plan = append(plan, agent.Challenger)
	}

	return append(plan, agent.Optimizer, agent.Publisher)
}
