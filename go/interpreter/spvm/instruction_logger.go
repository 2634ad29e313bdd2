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
	"io"

	"github.com/Fantom-foundation/Expr/go/expr"
)

// loggingRunner is a runner that logs the evaluation of expressions to an
// io.Writer. If no writer is provided, nothing is logged.
type loggingRunner struct {
	log io.Writer
}

// newLogger creates a new logging runner that writes to the provided
// io.Writer.
func newLogger(writer io.Writer) loggingRunner {
	return loggingRunner{log: writer}
}

func (l loggingRunner) run(c *context, source int) error {
	var writeErr error
	if l.log != nil {
		c.observer = func(c *context, source int, pc int, op expr.OpCode) {
			if writeErr != nil {
				return
			}
			// log format: <source>:<pc> <op>, <depth>, <top-of-stack>\n
			top := "-empty-"
			if c.stack.len() > 0 {
				top = c.stack.peek().ToBig().String()
			}
			_, writeErr = fmt.Fprintf(l.log, "%d:%d %v, %d, %v\n", source, pc, op, c.depth, top)
		}
	}
	if err := c.runSource(source); err != nil {
		return err
	}
	return writeErr
}
