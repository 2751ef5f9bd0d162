package trace

// Progress answers "what stage is this run in right now", reconstructed
// from the event log.
type Progress struct {
	Completed []string
	Active    []string
	Pending   []string

	// CurrentStage is the stage name of the most recent stage_start, or
	// "" when nothing has started.
	CurrentStage string
}

// Current returns the active agent, if exactly the usual single agent
// is running.
func (p Progress) Current() string {
	if len(p.Active) > 0 {
		return p.Active[len(p.Active)-1]
	}
	return ""
}

// Reconstruct folds the event log into completed/active/pending agent
// sets against an expected agent plan. It is a pure function so it can
// be tested without I/O. Agents that appear in events but not in the
// plan (variants, specialists chosen at runtime) are still tracked.
func Reconstruct(events []Event, plan []string) Progress {
	started := make(map[string]bool)
	ended := make(map[string]bool)
	var order []string
	current := ""

	for _, evt := range events {
		if evt.AgentName == "" {
			continue
		}
		switch evt.Kind {
		case KindStageStart:
			if !started[evt.AgentName] {
				started[evt.AgentName] = true
				order = append(order, evt.AgentName)
			}
			current = evt.StageName
		case KindStageEnd:
			ended[evt.AgentName] = true
		}
	}

	p := Progress{CurrentStage: current}
	for _, agent := range order {
		if ended[agent] {
			p.Completed = append(p.Completed, agent)
		} else {
			p.Active = append(p.Active, agent)
		}
	}
	for _, agent := range plan {
		if !started[agent] {
			p.Pending = append(p.Pending, agent)
		}
	}
	return p
}

// FromCompleted builds a Progress when no event log exists and progress
// must be inferred from which artifacts were persisted.
func FromCompleted(completed, plan []string) Progress {
	done := make(map[string]bool, len(completed))
	for _, agent := range completed {
		done[agent] = true
	}
	p := Progress{Completed: completed}
	for _, agent := range plan {
		if !done[agent] {
			p.Pending = append(p.Pending, agent)
		}
	}
	return p
}
