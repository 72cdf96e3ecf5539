package merge

import (
	"strings"

	"course-catalog/internal/jsonval"
)

// FingerprintFunc derives an identity string for a list item that has no
// guaranteed stable key. Swapping the strategy does not touch merge logic.
type FingerprintFunc func(jsonval.Value) string

// Candidate fields, in priority order. Upstream announcement shapes have
// been seen with any of these, or none.
var (
	fpIDFields    = []string{"id", "notice_id", "_id", "update_id", "uid"}
	fpTimeFields  = []string{"created_at", "createdAt", "published_at", "publishedAt", "date", "time"}
	fpTitleFields = []string{"title", "heading", "name"}
	fpBodyFields  = []string{"body", "description", "content", "message"}
)

const fpBodyPrefixLen = 60

// Fingerprint is the default identity strategy:
//  1. first non-blank identity field -> "<field>:<value>"
//  2. else, if a timestamp-like or title-like field exists, a composite of
//     timestamp, title and the leading chunk of a body-like field
//  3. else, the canonical serialization of the whole item.
//
// Two items sharing identity fields, or enough denormalized content, count
// as the same announcement. That is deliberately approximate; it holds up
// against upstreams that omit stable IDs.
func Fingerprint(v jsonval.Value) string {
	obj, ok := jsonval.AsObject(v)
	if !ok {
		return jsonval.Canonical(v)
	}

	for _, f := range fpIDFields {
		fv, present := obj.Get(f)
		if !present || jsonval.Blank(fv) {
			continue
		}
		if s := jsonval.StringOf(fv); s != "" {
			return f + ":" + s
		}
	}

	ts := firstNonBlank(obj, fpTimeFields)
	title := firstNonBlank(obj, fpTitleFields)
	if ts != "" || title != "" {
		body := firstNonBlank(obj, fpBodyFields)
		if len(body) > fpBodyPrefixLen {
			body = body[:fpBodyPrefixLen]
		}
		return strings.Join([]string{"ts:" + ts, "title:" + title, "body:" + body}, "|")
	}

	return jsonval.Canonical(obj)
}

func firstNonBlank(obj *jsonval.Object, fields []string) string {
	for _, f := range fields {
		fv, present := obj.Get(f)
		if !present || jsonval.Blank(fv) {
			continue
		}
		if s := jsonval.StringOf(fv); s != "" {
			return s
		}
	}
	return ""
}
