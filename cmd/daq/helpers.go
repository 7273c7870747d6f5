package main

import (
	"fmt"
	"strconv"

	"github.com/camac-tools/camacdaq/pkg/types"
)

// parseInt parses a decimal or 0x-prefixed integer argument.
func parseInt(arg string) (int, error) {
	n, err := strconv.ParseInt(arg, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", arg)
	}
	return int(n), nil
}

// parseWord parses a decimal or 0x-prefixed data word.
func parseWord(arg string) (uint32, error) {
	n, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("not a data word: %q", arg)
	}
	return uint32(n), nil
}

// printResult reports a normalized Result in the operation's shape:
// read-class operations show the data word, others just the response
// bits.
func printResult(res types.Result, direction types.Direction) {
	switch direction {
	case types.DirectionRead:
		fmt.Printf("Data=%d (0x%X)  Q=%v X=%v\n", res.Data, res.Data, res.Q, res.X)
	case types.DirectionWrite:
		fmt.Printf("Data written  Q=%v X=%v\n", res.Q, res.X)
	default:
		fmt.Printf("Q=%v X=%v\n", res.Q, res.X)
	}
}
