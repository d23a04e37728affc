package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"daylog/internal/grouping"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Bucket    grouping.Bucket // valid only if HasBucket
	Num       int             // 1-based position
	HasBucket bool            // true if a bucket letter was provided
}

func (r TaskRef) String() string {
	if r.HasBucket {
		return fmt.Sprintf("%c%d", r.Bucket.Letter(), r.Num)
	}
	return strconv.Itoa(r.Num)
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
//  1. All digits (e.g. 3) → position in the whole grouped listing
//  2. <letter><digits> (e.g. o1, t12) → position within one bucket, where
//     the letter is r, o, t, u, n or c
//  3. Anything else → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}

	arg := args[0]

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{Num: num}, nil
	}

	if len(arg) > 1 && isLetter(rune(arg[0])) && isAllDigits(arg[1:]) {
		b, ok := grouping.BucketForLetter(arg[0])
		if !ok {
			return TaskRef{}, fmt.Errorf("unknown bucket letter: %c", arg[0])
		}
		num, err := strconv.Atoi(arg[1:])
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{Bucket: b, Num: num, HasBucket: true}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isLetter returns true if r is a lowercase letter a-z.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}
