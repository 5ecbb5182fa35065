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
package hoare

import (
	"errors"
	"fmt"

	"github.com/yurrriq/frap/pkg/heap"
)

var (
	// ErrPreconditionUnmet is returned when a triple is checked against a heap
	// which does not satisfy its precondition.  This is a misuse of the triple,
	// rather than a flaw in its proof.
	ErrPreconditionUnmet = errors.New("precondition unmet")
	// ErrObligationUnmet is returned when a side condition of a rule (e.g. an
	// implication required by the rule of consequence) does not hold.
	ErrObligationUnmet = errors.New("proof obligation unmet")
	// ErrMalformedInvariant is returned when a loop invariant is not
	// established on entry, or not preserved by the loop body.
	ErrMalformedInvariant = errors.New("malformed invariant")
	// ErrDerivationMismatch is returned when a derivation and the command it
	// describes disagree on the outcome of a step.
	ErrDerivationMismatch = errors.New("derivation mismatch")
)

// Diagnostic describes a failure to verify a triple, identifying the rule
// responsible and the configuration at which it was detected.  Diagnostics are
// only ever produced at verification time; execution itself never fails.
type Diagnostic struct {
	// Kind of failure (one of the sentinel errors above).
	Kind error
	// Rule whose obligation failed.
	Rule string
	// Explanation of the failure.
	Message string
	// Number of steps executed before the failure was detected.
	Step uint
	// Heap at the point of failure.
	Heap heap.Heap
}

func (p *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s rule at step %d, heap %s: %s", p.Kind, p.Rule, p.Step, p.Heap.String(), p.Message)
}

// Unwrap returns the kind of this diagnostic, such that errors.Is can be used
// to classify it.
func (p *Diagnostic) Unwrap() error {
	return p.Kind
}
