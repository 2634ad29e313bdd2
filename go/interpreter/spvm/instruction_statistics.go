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
	"sort"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Expr/go/expr"
)

// statisticRunner is a runner that collects statistics about the instruction
// sequences of evaluated expressions.
type statisticRunner struct {
	mutex sync.Mutex
	stats *statistics
}

func (s *statisticRunner) run(c *context, source int) error {
	stats := statsCollector{stats: newStatistics()}
	c.observer = func(_ *context, _ int, _ int, op expr.OpCode) {
		stats.nextOp(op)
	}
	err := c.runSource(source)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	s.stats.insert(stats.stats)
	return err
}

// getSummary returns a summary of the collected statistics in a human-readable
// format.
func (s *statisticRunner) getSummary() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	return s.stats.print()
}

// reset clears the collected statistics.
func (s *statisticRunner) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stats = newStatistics()
}

// statistics contains the instruction sequence statistics of evaluations.
// It counts the number of times each instruction is executed, as well as the
// number of times each pair and triple of instructions is executed.
type statistics struct {
	count       uint64
	singleCount map[uint64]uint64
	pairCount   map[uint64]uint64
	tripleCount map[uint64]uint64
}

func newStatistics() *statistics {
	return &statistics{
		singleCount: map[uint64]uint64{},
		pairCount:   map[uint64]uint64{},
		tripleCount: map[uint64]uint64{},
	}
}

// insert adds the instruction counts of the given statistics to this instance.
func (s *statistics) insert(src *statistics) {
	s.count += src.count
	for k, v := range src.singleCount {
		s.singleCount[k] += v
	}
	for k, v := range src.pairCount {
		s.pairCount[k] += v
	}
	for k, v := range src.tripleCount {
		s.tripleCount[k] += v
	}
}

// print returns a human-readable summary of the collected statistics.
func (s *statistics) print() string {

	type entry struct {
		value uint64
		count uint64
	}

	getTopN := func(data map[uint64]uint64, n int) []entry {
		list := make([]entry, 0, len(data))
		for k, c := range data {
			list = append(list, entry{k, c})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].count == list[j].count {
				return list[i].value < list[j].value
			}
			return list[i].count > list[j].count
		})
		if len(list) < n {
			return list
		}
		return list[0:n]
	}

	builder := strings.Builder{}
	write := func(format string, args ...interface{}) {
		builder.WriteString(fmt.Sprintf(format, args...))
	}

	op := func(value uint64) expr.OpCode {
		return expr.OpCode(value & 0xffff)
	}

	write("\n----- Statistics ------\n")
	write("\nSteps: %d\n", s.count)
	write("\nSingles:\n")
	for _, e := range getTopN(s.singleCount, 5) {
		write("\t%-20v: %d (%.2f%%)\n", op(e.value), e.count, float32(e.count*100)/float32(s.count))
	}
	write("\nPairs:\n")
	for _, e := range getTopN(s.pairCount, 5) {
		write("\t%-20v%-20v: %d (%.2f%%)\n", op(e.value>>16), op(e.value), e.count, float32(e.count*100)/float32(s.count))
	}
	write("\nTriples:\n")
	for _, e := range getTopN(s.tripleCount, 5) {
		write("\t%-20v%-20v%-20v: %d (%.2f%%)\n", op(e.value>>32), op(e.value>>16), op(e.value), e.count, float32(e.count*100)/float32(s.count))
	}
	write("\n")

	return builder.String()
}

// statsCollector is a helper struct that keeps track of the recent history
// of executed instructions to collect instruction sequence statistics.
type statsCollector struct {
	stats *statistics

	last       uint64
	secondLast uint64
}

func (s *statsCollector) nextOp(op expr.OpCode) {
	cur := uint64(op)
	s.stats.count++
	s.stats.singleCount[cur]++
	if s.stats.count >= 2 {
		s.stats.pairCount[s.last<<16|cur]++
	}
	if s.stats.count >= 3 {
		s.stats.tripleCount[s.secondLast<<32|s.last<<16|cur]++
	}
	s.last, s.secondLast = cur, s.last
}
