// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package deep

import (
	log "github.com/sirupsen/logrus"
	"github.com/yurrriq/frap/pkg/heap"
)

// Run a command on a given heap for at most fuel steps.  If the command
// produces its answer within that many steps, the answer is returned.
// Otherwise, the execution is suspended at the last configuration reached, and
// can be resumed later.  Running out of fuel is not a failure: it simply means
// more steps are needed.  In particular, running any command with zero fuel
// suspends it immediately.
func Run[R any](c Command[R], h heap.Heap, fuel uint) StepResult[R] {
	var machine = NewMachine(c, h)
	//
	machine.Execute(fuel)
	//
	return machine.State()
}

// Resume a previously suspended execution for at most fuel further steps.  An
// execution which has already produced its answer is returned as is.
func Resume[R any](result StepResult[R], fuel uint) StepResult[R] {
	if result.IsAnswer() {
		return result
	}
	//
	return Run(result.Next(), result.Heap(), fuel)
}

// Core represents an executing machine which can be driven forward a bounded
// number of steps at a time.
type Core[R any] interface {
	// Execute the machine for (at most) the given number of steps, returning
	// the actual number of steps executed.  Fewer steps are executed only when
	// the machine has produced its answer.
	Execute(steps uint) uint
	// Return the current state of this machine.
	State() StepResult[R]
}

// ExecuteAll executes a given machine to completion in chunks of n steps,
// returning the number of steps executed.  Observe that this does not return
// if the machine never produces an answer.
func ExecuteAll[R any, M Core[R]](machine M, n uint) uint {
	var nsteps uint
	//
	for {
		// Execute upto n steps
		m := machine.Execute(n)
		// update the tally
		nsteps += m
		// check for termination
		if m < n || n == 0 {
			return nsteps
		}
	}
}

// Configuration describes a point reached during execution of a machine, as
// reported to observers.
type Configuration struct {
	// Number of steps executed to reach this configuration.
	Step uint
	// Heap at this configuration.
	Heap heap.Heap
	// Kind of the command remaining to execute (or of the command which
	// produced the answer).
	Kind Kind
	// Indicates whether the answer has been produced.
	Answered bool
}

// Observer is notified of every configuration reached by a machine.
type Observer func(Configuration)

// Machine holds the state of an executing command, such that it can be driven
// forward in bounded chunks and its execution continued later.  The machine
// keeps its continuations on an explicit stack between steps, and only
// reconstructs the remaining command when its state is requested.
type Machine[R any] struct {
	heap      heap.Heap
	cursor    *cursor
	answered  bool
	value     any
	steps     uint
	observers []Observer
}

// NewMachine constructs a machine ready to execute a given command on a given
// heap.
func NewMachine[R any](c Command[R], h heap.Heap) *Machine[R] {
	if c.node == nil {
		panic("cannot execute empty command")
	}
	//
	return &Machine[R]{heap: h, cursor: newCursor(c.node)}
}

// WithObserver returns a machine identical to this one, except that the given
// observer is also notified of every configuration reached from now on.  The
// two machines can then be executed independently.
func (p *Machine[R]) WithObserver(observer Observer) *Machine[R] {
	var machine = *p
	//
	machine.cursor = p.cursor.clone()
	machine.observers = append(append([]Observer(nil), p.observers...), observer)
	//
	return &machine
}

// Execute implementation for the Core interface.
func (p *Machine[R]) Execute(steps uint) uint {
	var nsteps uint
	//
	for ; nsteps < steps && !p.answered; nsteps++ {
		var (
			kind = p.cursor.kind()
			t    = p.cursor.advance(p.heap)
		)
		//
		p.steps++
		//
		if t.answered {
			p.answered, p.value = true, t.value
		} else {
			p.heap, kind = t.heap, p.cursor.kind()
		}
		//
		if log.IsLevelEnabled(log.TraceLevel) {
			log.Tracef("step %d: %s on heap %s", p.steps, kind, p.heap.Digest().Short())
		}
		//
		p.notify(Configuration{p.steps, p.heap, kind, p.answered})
	}
	//
	if !p.answered && nsteps == steps {
		log.Debugf("fuel exhausted after %d steps (%s with %d continuations)", p.steps, p.cursor.command.String(),
			p.cursor.continuations.Len())
	}
	//
	return nsteps
}

// State implementation for the Core interface.
func (p *Machine[R]) State() StepResult[R] {
	if p.answered {
		return Answer(unwrap[R](p.value), p.heap)
	}
	//
	return Suspended(p.heap, Command[R]{p.cursor.node()})
}

// Steps returns the total number of steps executed by this machine so far.
func (p *Machine[R]) Steps() uint {
	return p.steps
}

// Terminated checks whether this machine has produced its answer.
func (p *Machine[R]) Terminated() bool {
	return p.answered
}

func (p *Machine[R]) notify(config Configuration) {
	for _, observer := range p.observers {
		observer(config)
	}
}
