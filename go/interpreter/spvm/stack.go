// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package spvm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/holiman/uint256"
)

// defaultMaxStackHeight is the default upper bound of the stack height a
// verified expression may reach.
const defaultMaxStackHeight = 1024

// stack is the word-addressed memory of a single evaluation. All values of
// all nested scopes share a single buffer; the active scope covers the
// range [bottom, top). The buffer is sized by the verifier before the
// evaluation starts and never grows during evaluation.
//
// Bounds are not checked by the individual operations. Users of the stack
// must prevent over- and underflow situations, typically by relying on the
// verifier and the limit checks of the interpreter loop.
//
// Stacks are pooled to avoid reallocations. To obtain a stack with a given
// capacity, use newStack(). To return a stack to the pool, use
// returnStack(s).
//
// The stack is not thread-safe. newStack() and returnStack() are
// thread-safe.
type stack struct {
	data    []uint256.Int
	top     int
	bottom  int
	scratch []uint256.Int
}

// push adds a copy of the given value to the top of the stack.
func (s *stack) push(d *uint256.Int) {
	s.data[s.top] = *d
	s.top++
}

// pushUndefined adds a value with an undefined value to the top of the stack
// and returns a pointer to this element.
func (s *stack) pushUndefined() *uint256.Int {
	s.top++
	return &s.data[s.top-1]
}

// pop removes the top element from the stack and returns a pointer to it.
// The obtained pointer is only valid until the next push operation.
func (s *stack) pop() *uint256.Int {
	s.top--
	return &s.data[s.top]
}

// peek returns a pointer to the top element of the stack without removing it.
func (s *stack) peek() *uint256.Int {
	return &s.data[s.top-1]
}

// peekN returns a pointer to the n-th element from the top of the stack
// without removing it. The top element is at index 0.
func (s *stack) peekN(n int) *uint256.Int {
	return &s.data[s.top-n-1]
}

// get returns the element at the given index of the active scope. The
// bottom element of the scope is at index 0.
func (s *stack) get(i int) *uint256.Int {
	return &s.data[s.bottom+i]
}

// len returns the number of elements in the active scope.
func (s *stack) len() int {
	return s.top - s.bottom
}

// capacity returns the number of elements the stack can hold in total.
func (s *stack) capacity() int {
	return len(s.data)
}

// topN returns the n topmost elements, ordered bottom to top. The slice
// aliases the stack and is only valid until the next modification.
func (s *stack) topN(n int) []uint256.Int {
	return s.data[s.top-n : s.top]
}

// applyFn pops n elements, passes them to fn ordered bottom to top, and
// pushes the m elements produced by fn. It returns the new top of the
// stack. If fn fails, the stack content is undefined.
func (s *stack) applyFn(n, m int, fn func(inputs, outputs []uint256.Int) error) (int, error) {
	if cap(s.scratch) < m {
		s.scratch = make([]uint256.Int, m)
	}
	outputs := s.scratch[:m]
	if err := fn(s.data[s.top-n:s.top], outputs); err != nil {
		return s.top, err
	}
	s.top -= n
	copy(s.data[s.top:], outputs)
	s.top += m
	return s.top, nil
}

// enter opens a nested scope consisting of the given number of topmost
// elements. It returns the bottom of the enclosing scope, to be passed to
// leave.
func (s *stack) enter(inputs int) int {
	outer := s.bottom
	s.bottom = s.top - inputs
	return outer
}

// leave closes the active scope, keeping its topmost outputs elements in
// place of the elements of the scope, and restores the given bottom.
func (s *stack) leave(outputs int, outer int) {
	copy(s.data[s.bottom:], s.data[s.top-outputs:s.top])
	s.top = s.bottom + outputs
	s.bottom = outer
}

func (s *stack) String() string {
	b := strings.Builder{}
	for i := 0; i < s.top; i++ {
		marker := ""
		if s.top-i-1 == s.bottom {
			marker = " <- bottom"
		}
		b.WriteString(fmt.Sprintf("    [%4d] %v%s\n", s.top-i-1, s.peekN(i).Hex(), marker))
	}
	return b.String()
}

// ------------------ Stack Pool ------------------

var stackPool = sync.Pool{
	New: func() interface{} {
		return &stack{}
	},
}

// newStack returns a stack with at least the given capacity from the reuse
// pool. This function is thread-safe.
func newStack(capacity int) *stack {
	s := stackPool.Get().(*stack)
	if cap(s.data) < capacity {
		s.data = make([]uint256.Int, capacity)
	}
	s.data = s.data[:capacity]
	return s
}

// returnStack returns the stack to the reuse pool. Any stack may only be
// returned once to avoid concurrent re-use. This function is thread-safe.
func returnStack(s *stack) {
	s.top = 0
	s.bottom = 0
	stackPool.Put(s)
}
