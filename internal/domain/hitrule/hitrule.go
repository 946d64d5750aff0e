// Package hitrule decides whether a stored prediction hits a draw.
//
// Evaluation is pure: the open code is reduced to its digits, the prediction
// to the set of digits it mentions, and the play-type rule picks exactly one
// comparison. Missing digits on either side never hit.
package hitrule

import (
	"regexp"
	"strings"

	"github.com/suwei8/lotto-ai4/internal/domain/playtype"
)

var tokenSeparators = regexp.MustCompile(`[\s,|;]+`)

// IsHit classifies name on the fly. Callers holding a playtype.Catalog should
// resolve the rule once and use Evaluate.
func IsHit(playtypeName, numbers, openCode string) bool {
	return Evaluate(playtype.Classify(playtypeName), numbers, openCode)
}

func Evaluate(rule playtype.Rule, numbers, openCode string) bool {
	open := NormalizeCode(openCode)
	if open == "" {
		return false
	}
	predicted := PredictedDigits(numbers)
	if len(predicted) == 0 {
		return false
	}

	openSet := digitSet(open)
	switch rule.Category {
	case playtype.CategoryKill:
		return overlap(predicted, openSet) == 0
	case playtype.CategoryPositionPick, playtype.CategoryPositionKill:
		if rule.Position < 0 || rule.Position >= len(open) {
			return false
		}
		_, listed := predicted[open[rule.Position]]
		if rule.Category == playtype.CategoryPositionKill {
			return !listed
		}
		return listed
	case playtype.CategorySingleDan:
		return overlap(predicted, openSet) >= 1
	case playtype.CategoryDoubleDan:
		return overlap(predicted, openSet) >= 2
	case playtype.CategoryGroup:
		hits := overlap(predicted, openSet)
		switch len(openSet) {
		case 1:
			_, ok := predicted[open[0]]
			return ok
		case 2:
			return hits >= 2
		default:
			// Wider codes still need exactly three covered digits.
			return hits == 3
		}
	default:
		return false
	}
}

// NormalizeCode keeps only ASCII digits.
func NormalizeCode(code string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, code)
}

// PredictedDigits splits numbers on whitespace, commas, pipes and semicolons
// and collects every digit of every token.
func PredictedDigits(numbers string) map[byte]struct{} {
	out := make(map[byte]struct{})
	for _, token := range tokenSeparators.Split(numbers, -1) {
		for _, d := range []byte(NormalizeCode(token)) {
			out[d] = struct{}{}
		}
	}
	return out
}

func digitSet(code string) map[byte]struct{} {
	out := make(map[byte]struct{}, len(code))
	for i := 0; i < len(code); i++ {
		out[code[i]] = struct{}{}
	}
	return out
}

func overlap(a, b map[byte]struct{}) int {
	n := 0
	for d := range a {
		if _, ok := b[d]; ok {
			n++
		}
	}
	return n
}
