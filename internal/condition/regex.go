// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package condition

import (
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Regex guard defaults.
const (
	DefaultMaxRegexLength = 200
	DefaultRegexTimeout   = 500 * time.Millisecond
)

// deniedShapes are pathological pattern fragments rejected outright:
// nested and repeated quantifiers, and stacked .* pairs.
var deniedShapes = []string{"+*", "*+", "++", "**", ".*.*"}

// openRepetition matches counted repetitions with no upper bound ({n,}).
var openRepetition = regexp.MustCompile(`\{\d+,\}`)

// checkPattern enforces the length cap and the shape denylist.
func checkPattern(pattern string, maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxRegexLength
	}
	if len(pattern) > maxLen {
		return oops.Code("EVAL_ERROR").
			With("length", len(pattern)).
			Errorf("regex pattern exceeds maximum length of %d", maxLen)
	}
	for _, shape := range deniedShapes {
		if strings.Contains(pattern, shape) {
			return oops.Code("EVAL_ERROR").
				With("shape", shape).
				Errorf("unsafe pattern: contains %q", shape)
		}
	}
	if openRepetition.MatchString(pattern) {
		return oops.Code("EVAL_ERROR").Errorf("unsafe pattern: open-ended repetition")
	}
	return nil
}

// compileRegex translates the flag set into inline RE2 flags and compiles.
// `g` is accepted and ignored; the engine matches once per evaluation.
func compileRegex(lit *RegexLiteral, maxLen int) (*regexp.Regexp, error) {
	if err := checkPattern(lit.Pattern, maxLen); err != nil {
		return nil, err
	}
	var inline strings.Builder
	for _, f := range lit.Flags {
		switch f {
		case 'i':
			inline.WriteString("i")
		case 'm':
			inline.WriteString("m")
		case 's':
			inline.WriteString("s")
		case 'g':
			// Match-once semantics; nothing to do.
		default:
			return nil, oops.Code("EVAL_ERROR").
				With("flag", string(f)).
				Errorf("unsupported regex flag %q", string(f))
		}
	}
	pattern := lit.Pattern
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, oops.Code("PARSE_ERROR").Wrapf(err, "invalid regex /%s/%s", lit.Pattern, lit.Flags)
	}
	return re, nil
}

// matchTimed runs a single match under the wall-clock budget. RE2 is
// linear-time, so the check is a backstop rather than the primary guard.
func matchTimed(re *regexp.Regexp, subject string, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = DefaultRegexTimeout
	}
	start := time.Now()
	matched := re.MatchString(subject)
	if time.Since(start) > timeout {
		return false, oops.Code("EVAL_ERROR").
			With("pattern", re.String()).
			Errorf("regex execution timeout")
	}
	return matched, nil
}
