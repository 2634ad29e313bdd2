// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package externs contains extern providers which may be registered with
// interpreters to extend expressions by host-side functionality.
package externs

import (
	"fmt"
	"math/big"
	"time"

	"github.com/Fantom-foundation/Expr/go/common"
	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

//go:generate mockgen -source price_feed.go -destination price_feed_mock.go -package externs

// Round is the latest answer reported by a price feed.
type Round struct {
	Answer    *big.Int // may be negative for misbehaving feeds
	Decimals  uint8
	UpdatedAt time.Time
}

// PriceOracle provides access to price feeds identified by their address.
type PriceOracle interface {
	LatestRound(feed expr.Address) (Round, error)
}

// Opcodes of the PriceFeed provider.
const (
	// OpPrice maps [feed, staleAfter] to [price].
	OpPrice uint8 = 0
	// OpPrices maps [sentinel, feed..., staleAfter] to one price per feed.
	OpPrices uint8 = 1
)

// PriceDecimals is the fixed point precision of all reported prices.
const PriceDecimals = 18

const (
	ErrStalePrice       = common.ConstError("stale price")
	ErrNonPositivePrice = common.ConstError("non-positive price")
	ErrUnknownOpcode    = common.ConstError("unknown extern opcode")
)

// PriceFeed is an extern provider reporting prices of an oracle as 18
// decimal fixed point values. Staleness limits are given in seconds; a
// limit of zero disables the check.
type PriceFeed struct {
	oracle PriceOracle
	now    func() time.Time
}

func NewPriceFeed(oracle PriceOracle) *PriceFeed {
	return &PriceFeed{oracle: oracle, now: time.Now}
}

func (f *PriceFeed) Extern(opcode uint8, inputs []expr.Word) ([]expr.Word, error) {
	switch opcode {
	case OpPrice:
		if len(inputs) != 2 {
			return nil, expr.BadInputsError{Expected: 2, Actual: len(inputs)}
		}
		price, err := f.price(inputs[0].Address(), inputs[1])
		if err != nil {
			return nil, err
		}
		return []expr.Word{price}, nil

	case OpPrices:
		if len(inputs) < 2 {
			return nil, expr.BadInputsError{Expected: 2, Actual: len(inputs)}
		}
		staleAfter := inputs[len(inputs)-1]
		feeds, rest, err := common.NewListView(inputs[:len(inputs)-1]).ConsumeSentinel(expr.Sentinel, 1)
		if err != nil {
			return nil, err
		}
		if rest.Len() != 0 {
			return nil, expr.BadInputsError{Expected: len(inputs) - rest.Len(), Actual: len(inputs)}
		}
		res := make([]expr.Word, len(feeds))
		for i, feed := range feeds {
			if res[i], err = f.price(feed.Address(), staleAfter); err != nil {
				return nil, err
			}
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, opcode)
}

func (f *PriceFeed) price(feed expr.Address, staleAfter expr.Word) (expr.Word, error) {
	round, err := f.oracle.LatestRound(feed)
	if err != nil {
		return expr.Word{}, fmt.Errorf("feed %v: %w", feed, err)
	}
	if round.Answer == nil || round.Answer.Sign() <= 0 {
		return expr.Word{}, fmt.Errorf("%w: feed %v answered %v", ErrNonPositivePrice, feed, round.Answer)
	}
	limit := staleAfter.ToUint256()
	if !limit.IsZero() && limit.IsUint64() && limit.Uint64() <= maxStaleSeconds {
		age := f.now().Sub(round.UpdatedAt)
		if age > time.Duration(limit.Uint64())*time.Second {
			log.Debug("Rejected stale price", "feed", feed, "age", age, "limit", limit.Uint64())
			return expr.Word{}, fmt.Errorf("%w: feed %v updated %v ago", ErrStalePrice, feed, age)
		}
	}
	return scale(round.Answer, round.Decimals)
}

// maxStaleSeconds bounds staleness limits to durations representable by
// time.Duration; larger limits never trigger.
const maxStaleSeconds = uint64(1<<63-1) / uint64(time.Second)

// maxPowerOfTen is the largest exponent e such that 10^e fits into 256 bits.
const maxPowerOfTen = 77

// scale converts a fixed point value with the given number of decimals
// into one with PriceDecimals decimals. Excess digits are truncated.
func scale(answer *big.Int, decimals uint8) (expr.Word, error) {
	value, overflow := uint256.FromBig(answer)
	if overflow {
		return expr.Word{}, expr.ErrArithmeticOverflow
	}
	var factor uint256.Int
	if decimals < PriceDecimals {
		factor.Exp(uint256.NewInt(10), uint256.NewInt(uint64(PriceDecimals-decimals)))
		if _, overflow := value.MulOverflow(value, &factor); overflow {
			return expr.Word{}, expr.ErrArithmeticOverflow
		}
	} else if decimals-PriceDecimals > maxPowerOfTen {
		// Every 256-bit value is below the divisor.
		value.Clear()
	} else if decimals > PriceDecimals {
		factor.Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals-PriceDecimals)))
		value.Div(value, &factor)
	}
	return expr.WordFromUint256(value), nil
}
