// Package filter selects the course summaries a run cares about by
// matching configured keywords against batch titles.
package filter

import (
	"regexp"
	"strings"

	"course-catalog/internal/jsonval"
)

var numberPrefix = regexp.MustCompile(`^(\d+)\s+(.*)$`)

// Compile turns keywords into case-insensitive word-boundary patterns.
// A keyword with a leading number also matches its ordinal forms, so
// "3 science" matches "3rd Science Batch".
func Compile(keywords []string) []*regexp.Regexp {
	var pats []*regexp.Regexp
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if m := numberPrefix.FindStringSubmatch(kw); m != nil {
			pats = append(pats, regexp.MustCompile(`(?i)\b`+m[1]+`(?:st|nd|rd|th)?\s*`+regexp.QuoteMeta(m[2])+`\b`))
		} else {
			pats = append(pats, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		}
	}
	return pats
}

// MatchTitle reports whether any pattern matches the title.
func MatchTitle(title string, pats []*regexp.Regexp) bool {
	for _, p := range pats {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}

// Summary fields projected from a matched batch entry. Everything else the
// batches endpoint returns is noise at this stage; details come later.
var summaryFields = []string{"id", "title", "start_at", "end_at", "image_large", "image_thumb"}

// Summaries filters batch entries by title and projects each match down to
// the summary fields the normalizer needs.
func Summaries(batches *jsonval.List, pats []*regexp.Regexp) []*jsonval.Object {
	var out []*jsonval.Object
	if batches == nil {
		return out
	}
	for _, it := range batches.Items {
		obj, ok := jsonval.AsObject(it)
		if !ok {
			continue
		}
		title := jsonval.StringOf(obj.Field("title"))
		if !MatchTitle(title, pats) {
			continue
		}
		s := jsonval.NewObject()
		for _, f := range summaryFields {
			s.Set(f, obj.Field(f).Clone())
		}
		out = append(out, s)
	}
	return out
}
