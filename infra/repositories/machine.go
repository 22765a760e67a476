package repositories

import (
	"context"
	"sync"

	"github.com/giovaniif/coffee-machine/domain/machine"
)

type MachineRepositoryMemory struct {
	mutex sync.RWMutex
	state machine.State
}

func NewMachineRepositoryMemory(initial machine.State) *MachineRepositoryMemory {
	return &MachineRepositoryMemory{state: initial.Clone()}
}

func (r *MachineRepositoryMemory) Get(ctx context.Context) (machine.State, error) {
	if ctx.Err() != nil {
		return machine.State{}, ctx.Err()
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.state.Clone(), nil
}

// Update runs fn on a copy and commits it only when fn succeeds.
func (r *MachineRepositoryMemory) Update(ctx context.Context, fn func(state *machine.State) error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	next := r.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	r.state = next
	return nil
}
