package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Input reads player answers from a line-oriented reader.
type Input struct {
	r   *bufio.Reader
	out *Presenter
}

// NewInput reads from r and prompts through out.
func NewInput(r io.Reader, out *Presenter) *Input {
	return &Input{r: bufio.NewReader(r), out: out}
}

// Line prompts and returns the next trimmed line.
//
// Postcondition: Returns io.EOF once the reader is exhausted and nothing was typed.
func (in *Input) Line(prompt string) (string, error) {
	in.out.Prompt(prompt)
	s, err := in.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			return strings.TrimSpace(s), nil
		}
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Choose prompts until the player enters one of allowed.
//
// Precondition: allowed must be non-empty.
// Postcondition: The returned value is a member of allowed, or err is non-nil.
func (in *Input) Choose(prompt string, allowed []int) (int, error) {
	if len(allowed) == 0 {
		return 0, errors.New("no choices offered")
	}
	for {
		s, err := in.Line(prompt)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(s)
		if convErr == nil && slices.Contains(allowed, n) {
			return n, nil
		}
		in.out.Muted(fmt.Sprintf("Please enter one of: %s", describe(allowed)))
	}
}

// Number prompts until the player enters an integer in [lo, hi].
func (in *Input) Number(prompt string, lo, hi int) (int, error) {
	return in.Choose(prompt, Span(lo, hi))
}

// Span returns the integers lo..hi inclusive.
func Span(lo, hi int) []int {
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

// describe renders a choice set, collapsing a contiguous run to "lo-hi".
func describe(allowed []int) string {
	sorted := slices.Compact(slices.Sorted(slices.Values(allowed)))
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if len(sorted) > 2 && hi-lo+1 == len(sorted) {
		return fmt.Sprintf("%d-%d", lo, hi)
	}
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
