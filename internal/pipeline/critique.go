package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/christophervuu/flow/internal/agent"
	"github.com/christophervuu/flow/internal/model"
	"github.com/christophervuu/flow/internal/stage"
)

// runDeepCritique runs the four personas sequentially (deliberately not
// concurrent, unlike specialist fan-out), persists each perspective,
// then judges them down to one Critique.
func (r *Runner) runDeepCritique(ctx context.Context, runPath, proposedJSON string) (*model.Critique, error) {
	prompt := fmt.Sprintf("Proposed design:\n%s\n\nProduce your Critique JSON.", proposedJSON)
	critiques := make([]*model.Critique, 0, len(agent.Personas))

	for _, persona := range agent.Personas {
		c, err := stage.Run(ctx, r.executor(runPath), stage.Request{
			StageName:    persona.AgentName(),
			AgentName:    persona.AgentName(),
			Instructions: persona.Instructions(),
			Prompt:       prompt,
		}, stage.DecodeJSON[model.Critique]())
		if err != nil {
			return nil, err
		}
		critiques = append(critiques, c)
		if err := r.Store.SaveArtifactJSON(runPath, fmt.Sprintf("critique.%s.json", persona), c); err != nil {
			return nil, err
		}
	}

	critiquesJSON, err := json.Marshal(critiques)
	if err != nil {
		return nil, err
	}
	merged, err := stage.Run(ctx, r.executor(runPath), stage.Request{
		StageName:    "CritiqueJudge",
		AgentName:    agent.CritiqueJudge,
		Instructions: agent.CritiqueJudgeInstructions,
		Prompt:       fmt.Sprintf("Critique perspectives (Security, Operations, Cost, Edge Cases):\n%s\n\nMerge into a single Critique JSON.", critiquesJSON),
	}, stage.DecodeJSON[model.Critique]())
	if err != nil {
		return nil, err
	}
	if err := r.Store.SaveArtifactJSON(runPath, "critique.judge.json", merged); err != nil {
		return nil, err
	}
	return merged, nil
}
