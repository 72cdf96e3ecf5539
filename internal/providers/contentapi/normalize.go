package contentapi

import (
	"context"
	"log"
	"strconv"
	"time"

	"course-catalog/internal/jsonval"
)

// CourseDetail assembles the normalized detail record for one matched
// course summary: classroom list, lessons per classroom (with resolved
// playback URLs per video), live sessions, and announcements. A course
// whose sub-fetches all fail still yields a record with empty collections;
// the fill-only merge downstream treats that as no new information.
//
// rank is the 1-based match order of this run and lands in "ranking".
func (c *Client) CourseDetail(ctx context.Context, course *jsonval.Object, rank, total int) *jsonval.Object {
	cid := course.Field("id")
	cidStr := jsonval.StringOf(cid)

	out := jsonval.NewObject()
	out.Set("ranking", jsonval.Number(strconv.Itoa(rank)))
	out.Set("course_id", cid.Clone())
	out.Set("course_name", course.Field("title").Clone())
	out.Set("image_large", course.Field("image_large").Clone())
	out.Set("image_thumb", course.Field("image_thumb").Clone())

	classroom := c.Classroom(ctx, cidStr)
	out.Set("classroom", classroom)

	lessons := jsonval.NewList()
	for _, cls := range classroom.Items {
		clsObj, ok := jsonval.AsObject(cls)
		if !ok {
			continue
		}
		clsID := jsonval.StringOf(clsObj.Field("id"))
		if clsID == "" {
			continue
		}
		for _, l := range c.Lessons(ctx, clsID).Items {
			lessonObj, ok := jsonval.AsObject(l)
			if !ok {
				continue
			}
			lessons.Append(c.normalizeLesson(ctx, lessonObj))
		}
	}
	out.Set("lessons", lessons)

	out.Set("live_classes", c.LiveClasses(ctx, cidStr))
	out.Set("announcements", c.Announcements(ctx, cidStr))

	videoTotal := 0
	for _, l := range lessons.Items {
		if lessonObj, ok := jsonval.AsObject(l); ok {
			if videos, ok := jsonval.AsList(lessonObj.Field("videos")); ok {
				videoTotal += videos.Len()
			}
		}
	}
	out.Set("lesson_count", jsonval.Number(strconv.Itoa(videoTotal)))
	out.Set("fetched_at", jsonval.String(time.Now().UTC().Format(time.RFC3339)))

	log.Printf("[+] fetched %s (%d/%d)", jsonval.StringOf(course.Field("title")), rank, total)
	return out
}

// normalizeLesson shapes one raw lesson into the catalog's lesson record.
// Video ids are stringified; playback URLs come from the secondary
// per-video lookup.
func (c *Client) normalizeLesson(ctx context.Context, lesson *jsonval.Object) *jsonval.Object {
	videos := jsonval.NewList()
	for _, s := range jsonval.EnsureList(lesson.Field("videos")).Items {
		stub, ok := jsonval.AsObject(s)
		if !ok {
			continue
		}

		vid := jsonval.StringOf(stub.Field("id"))
		detail := jsonval.NewObject()
		if vid != "" {
			detail = c.Video(ctx, vid)
		}

		v := jsonval.NewObject()
		v.Set("id", jsonval.String(vid))
		v.Set("name", fieldOrEmpty(stub, "name"))
		v.Set("published_at", fieldOrEmpty(stub, "published_at"))
		v.Set("thumb", fieldOrEmpty(stub, "thumb"))
		v.Set("type", fieldOrEmpty(stub, "type"))
		v.Set("pdfs", jsonval.EnsureList(stub.Field("pdfs")).Clone())
		v.Set("m3u", fieldOrEmpty(detail, "video_url"))
		v.Set("yt", fieldOrEmpty(detail, "hd_video_url"))
		videos.Append(v)
	}

	out := jsonval.NewObject()
	out.Set("lesson_id", jsonval.String(jsonval.StringOf(lesson.Field("id"))))
	out.Set("lesson_name", fieldOrEmpty(lesson, "name"))
	out.Set("lesson_count", jsonval.Number(strconv.Itoa(videos.Len())))
	out.Set("videos", videos)
	out.Set("notes", jsonval.EnsureList(lesson.Field("notes")).Clone())
	return out
}

// fieldOrEmpty reads a field, mapping absent/null to "".
func fieldOrEmpty(obj *jsonval.Object, key string) jsonval.Value {
	v := obj.Field(key)
	if jsonval.Blank(v) && v.Kind() != jsonval.KindList && v.Kind() != jsonval.KindObject {
		return jsonval.String("")
	}
	return v.Clone()
}
