package service

import (
	"sort"

	"screening/internal/callqueue/models"
)

func toSnapshot(st *models.State) *Snapshot {
	snap := &Snapshot{
		Agents:  make([]*models.Agent, 0, len(st.Agents)),
		Waiting: st.Waiting,
		Active:  make([]*models.Caller, 0, len(st.Active)),
	}
	if snap.Waiting == nil {
		snap.Waiting = []*models.Caller{}
	}
	for _, a := range st.Agents {
		snap.Agents = append(snap.Agents, a)
	}
	sort.Slice(snap.Agents, func(i, j int) bool { return snap.Agents[i].ID < snap.Agents[j].ID })
	for _, c := range st.Active {
		snap.Active = append(snap.Active, c)
	}
	sort.Slice(snap.Active, func(i, j int) bool { return snap.Active[i].EnqueuedAt.Before(snap.Active[j].EnqueuedAt) })
	return snap
}
