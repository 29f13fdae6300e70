package response

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/datalab/datalab/internal/domain/catalog"
)

// regexCache memoizes compiled patterns; catalogs are small and patterns
// repeat across every batch.
var regexCache sync.Map // pattern string -> *regexp.Regexp

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	// anchor so the whole value must match
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

// Validate checks a raw answer against a question's type and rules, returning
// the first applicable failure. Pure: no storage access, no side effects.
func Validate(q *catalog.Question, rawValue string) error {
	trimmed := strings.TrimSpace(rawValue)

	if q.Required && trimmed == "" {
		return &RequiredFieldMissingError{Code: q.Code}
	}
	if trimmed == "" {
		return nil
	}

	rules, err := catalog.ParseRules(q.ValidationRule)
	if err != nil {
		return err
	}

	if q.IsNumeric() {
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return &InvalidTypeError{Code: q.Code, Expected: "numeric"}
		}
		if rules.Min != nil && n < *rules.Min {
			return &BelowMinimumError{Code: q.Code, Min: *rules.Min}
		}
		if rules.Max != nil && n > *rules.Max {
			return &AboveMaximumError{Code: q.Code, Max: *rules.Max}
		}
	}

	// The regex applies to the raw string regardless of type, so a numeric
	// field can additionally constrain its textual form.
	if rules.Regex != nil {
		re, err := compilePattern(*rules.Regex)
		if err != nil {
			return &catalog.InvalidRuleDefinitionError{Blob: *rules.Regex, Err: err}
		}
		if !re.MatchString(rawValue) {
			return &PatternMismatchError{Code: q.Code, Pattern: *rules.Regex}
		}
	}

	// length bounds count characters, not bytes, so accented input is not
	// penalized for its encoding
	length := utf8.RuneCountInString(rawValue)
	if rules.MinLength != nil && length < *rules.MinLength {
		return &LengthOutOfBoundsError{Code: q.Code, Bound: *rules.MinLength}
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		return &LengthOutOfBoundsError{Code: q.Code, Bound: *rules.MaxLength}
	}

	return nil
}
