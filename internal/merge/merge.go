// Package merge reconciles newly fetched course documents into previously
// accumulated ones. The policy is fill-only: data already present is never
// overwritten and never removed, so a partial or failed fetch can only add
// information, not regress it.
package merge

import (
	"strconv"

	"course-catalog/internal/jsonval"
)

// FillScalar copies incoming into existing[key] only when the existing field
// is blank and the incoming value is not. First writer wins.
func FillScalar(existing *jsonval.Object, key string, incoming jsonval.Value) {
	if jsonval.Blank(incoming) {
		return
	}
	if jsonval.Blank(existing.Field(key)) {
		existing.Set(key, incoming.Clone())
	}
}

// FillOnly walks incoming's keys and fills blanks in existing. Nested
// objects recurse; an existing field of the wrong shape is replaced by an
// empty object first. List-typed fields only get their slot ensured here:
// list contents need identity-aware reconciliation (MergeListByKey,
// MergeListByFingerprint) and are never merged by blind recursion.
func FillOnly(existing, incoming *jsonval.Object) {
	if existing == nil || incoming == nil {
		return
	}
	for _, k := range incoming.Keys() {
		v := incoming.Field(k)
		switch tv := v.(type) {
		case *jsonval.Object:
			tgt, ok := jsonval.AsObject(existing.Field(k))
			if !ok {
				tgt = jsonval.NewObject()
				existing.Set(k, tgt)
			}
			FillOnly(tgt, tv)
		case *jsonval.List:
			if _, ok := jsonval.AsList(existing.Field(k)); !ok {
				existing.Set(k, jsonval.NewList())
			}
		default:
			FillScalar(existing, k, v)
		}
	}
}

// MergeListByKey reconciles two lists of identifiable items. Object items
// are matched by the stringified value of key; matches merge fill-only,
// everything else appends. Non-object items and objects without a usable
// key append only if no equal entry exists already.
func MergeListByKey(existing, incoming *jsonval.List, key string) *jsonval.List {
	if existing == nil {
		existing = jsonval.NewList()
	}
	if incoming == nil {
		return existing
	}

	index := map[string]int{}
	for i, it := range existing.Items {
		if sid := itemKey(it, key); sid != "" {
			if _, dup := index[sid]; !dup {
				index[sid] = i
			}
		}
	}

	for _, item := range incoming.Items {
		obj, isObj := jsonval.AsObject(item)
		sid := itemKey(item, key)

		if !isObj || sid == "" {
			if !containsEqual(existing, item) {
				existing.Append(item.Clone())
			}
			continue
		}

		if idx, ok := index[sid]; ok {
			if target, ok := jsonval.AsObject(existing.Items[idx]); ok {
				FillOnly(target, obj)
			}
			continue
		}

		existing.Append(obj.Clone())
		index[sid] = existing.Len() - 1
	}

	return existing
}

// itemKey returns the stringified identity of an object item, or "" when
// the item is not an object or carries no usable key.
func itemKey(item jsonval.Value, key string) string {
	obj, ok := jsonval.AsObject(item)
	if !ok {
		return ""
	}
	kv, present := obj.Get(key)
	if !present || jsonval.Blank(kv) {
		return ""
	}
	return jsonval.StringOf(kv)
}

// MergeListByFingerprint reconciles a list whose items have no guaranteed
// identity field. Items sharing a fingerprint merge fill-only; the rest
// append. fp defaults to Fingerprint.
func MergeListByFingerprint(existing, incoming *jsonval.List, fp FingerprintFunc) *jsonval.List {
	if fp == nil {
		fp = Fingerprint
	}
	if existing == nil {
		existing = jsonval.NewList()
	}
	if incoming == nil {
		return existing
	}

	index := map[string]int{}
	for i, it := range existing.Items {
		f := fp(it)
		if _, dup := index[f]; !dup {
			index[f] = i
		}
	}

	for _, item := range incoming.Items {
		f := fp(item)
		if idx, ok := index[f]; ok {
			eo, okE := jsonval.AsObject(existing.Items[idx])
			no, okN := jsonval.AsObject(item)
			if okE && okN {
				FillOnly(eo, no)
			}
			continue
		}
		existing.Append(item.Clone())
		index[f] = existing.Len() - 1
	}

	return existing
}

// MergeCourse merges an incoming course record into an existing one in
// place: fill-only for scalars and nested objects, keyed reconciliation for
// classroom/live_classes, fingerprint reconciliation for announcements, and
// lesson reconciliation with nested video/notes handling. lesson_count is
// recomputed afterwards, and ranking is overwritten per run (it is a
// transient fetch-order label, not accumulated state).
func MergeCourse(existing, incoming *jsonval.Object) {
	if existing == nil || incoming == nil {
		return
	}

	FillOnly(existing, incoming)

	existing.Set("classroom", MergeListByKey(listField(existing, "classroom"), incomingList(incoming, "classroom"), "id"))
	existing.Set("live_classes", MergeListByKey(listField(existing, "live_classes"), incomingList(incoming, "live_classes"), "id"))
	existing.Set("announcements", MergeListByFingerprint(listField(existing, "announcements"), incomingList(incoming, "announcements"), nil))

	mergeLessons(existing, incoming)

	if rv, ok := incoming.Get("ranking"); ok && !jsonval.Blank(rv) {
		existing.Set("ranking", rv.Clone())
	}

	existing.Set("lesson_count", jsonval.Number(strconv.Itoa(courseVideoTotal(existing))))
}

func mergeLessons(existing, incoming *jsonval.Object) {
	el := listField(existing, "lessons")
	il := incomingList(incoming, "lessons")
	if il == nil {
		existing.Set("lessons", el)
		return
	}

	index := map[string]int{}
	for i, it := range el.Items {
		if lid := itemKey(it, "lesson_id"); lid != "" {
			if _, dup := index[lid]; !dup {
				index[lid] = i
			}
		}
	}

	for _, item := range il.Items {
		lesson, isObj := jsonval.AsObject(item)
		lid := itemKey(item, "lesson_id")

		if !isObj || lid == "" {
			if !containsEqual(el, item) {
				el.Append(item.Clone())
			}
			continue
		}

		if idx, ok := index[lid]; ok {
			target, ok := jsonval.AsObject(el.Items[idx])
			if !ok {
				continue
			}
			FillOnly(target, lesson)
			target.Set("videos", MergeListByKey(listField(target, "videos"), incomingList(lesson, "videos"), "id"))
			appendAbsent(listField(target, "notes"), incomingList(lesson, "notes"))
			target.Set("lesson_count", jsonval.Number(strconv.Itoa(videoCount(target))))
			continue
		}

		added := lesson.Clone().(*jsonval.Object)
		added.Set("lesson_count", jsonval.Number(strconv.Itoa(videoCount(added))))
		el.Append(added)
		index[lid] = el.Len() - 1
	}

	existing.Set("lessons", el)
}

// listField returns obj[key] as a list, replacing a missing or wrong-shaped
// field with a fresh empty list.
func listField(obj *jsonval.Object, key string) *jsonval.List {
	if l, ok := jsonval.AsList(obj.Field(key)); ok {
		return l
	}
	l := jsonval.NewList()
	obj.Set(key, l)
	return l
}

// incomingList returns obj[key] when it is a list, nil otherwise. A nil
// result means "nothing to reconcile" and leaves the existing side alone.
func incomingList(obj *jsonval.Object, key string) *jsonval.List {
	if l, ok := jsonval.AsList(obj.Field(key)); ok {
		return l
	}
	return nil
}

func containsEqual(list *jsonval.List, v jsonval.Value) bool {
	for _, it := range list.Items {
		if jsonval.Equal(it, v) {
			return true
		}
	}
	return false
}

// appendAbsent adds src items missing from dst, by equality. Used for
// lesson notes, which are an unordered-append list.
func appendAbsent(dst, src *jsonval.List) {
	if src == nil {
		return
	}
	for _, it := range src.Items {
		if !containsEqual(dst, it) {
			dst.Append(it.Clone())
		}
	}
}

func videoCount(lesson *jsonval.Object) int {
	if l, ok := jsonval.AsList(lesson.Field("videos")); ok {
		return l.Len()
	}
	return 0
}

func courseVideoTotal(course *jsonval.Object) int {
	total := 0
	if lessons, ok := jsonval.AsList(course.Field("lessons")); ok {
		for _, it := range lessons.Items {
			if lesson, ok := jsonval.AsObject(it); ok {
				total += videoCount(lesson)
			}
		}
	}
	return total
}
