// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package governance

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// ActionHandler applies one kind of proposal action. arg is whatever follows
// the action name in the proposal's action data.
type ActionHandler func(ctx context.Context, proposal *Proposal, arg []byte) error

// ActionRouter implements ActionExecutor by dispatching on the action name.
// Action data has the form "name" or "name:arg"; empty action data is a
// signalling proposal with no effect.
type ActionRouter struct {
	mu       sync.RWMutex
	handlers map[string]ActionHandler
}

// NewActionRouter creates a router with no handlers.
func NewActionRouter() *ActionRouter {
	return &ActionRouter{handlers: make(map[string]ActionHandler)}
}

// Register binds name to handler, replacing any previous binding.
func (r *ActionRouter) Register(name string, handler ActionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[name] = handler
}

// Execute implements ActionExecutor.
func (r *ActionRouter) Execute(ctx context.Context, proposal *Proposal) error {
	if len(proposal.ActionData) == 0 {
		return nil
	}
	name, arg := ParseAction(proposal.ActionData)

	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return handler(ctx, proposal, arg)
}

// ParseAction splits action data into its name and argument.
func ParseAction(data []byte) (string, []byte) {
	name, arg, _ := bytes.Cut(data, []byte{':'})
	return string(name), arg
}
