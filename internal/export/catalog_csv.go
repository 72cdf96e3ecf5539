package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"course-catalog/internal/jsonval"
)

// Catalog summary CSV. Keep header order EXACT; downstream sheets key on it.
var catalogHeader = []string{
	"COURSE_ID",
	"COURSE_NAME",
	"RANKING",
	"LESSON_COUNT",
	"CLASSROOMS",
	"LIVE_CLASSES",
	"ANNOUNCEMENTS",
	"IMAGE_LARGE",
	"IMAGE_THUMB",
	"FETCHED_AT",
}

// WriteCatalogCSV writes one summary row per course record. Nested
// collections are reduced to counts; blanks stay empty.
func WriteCatalogCSV(w io.Writer, courses *jsonval.List) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(catalogHeader); err != nil {
		return err
	}

	if courses != nil {
		for _, it := range courses.Items {
			course, ok := jsonval.AsObject(it)
			if !ok {
				continue
			}
			if err := cw.Write(toCatalogRow(course)); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCatalogCSVFile is WriteCatalogCSV against a file path.
func WriteCatalogCSVFile(path string, courses *jsonval.List) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCatalogCSV(f, courses)
}

func toCatalogRow(course *jsonval.Object) []string {
	return []string{
		jsonval.StringOf(course.Field("course_id")),
		jsonval.StringOf(course.Field("course_name")),
		jsonval.StringOf(course.Field("ranking")),
		jsonval.StringOf(course.Field("lesson_count")),
		listLen(course, "classroom"),
		listLen(course, "live_classes"),
		listLen(course, "announcements"),
		jsonval.StringOf(course.Field("image_large")),
		jsonval.StringOf(course.Field("image_thumb")),
		jsonval.StringOf(course.Field("fetched_at")),
	}
}

func listLen(course *jsonval.Object, key string) string {
	if l, ok := jsonval.AsList(course.Field(key)); ok {
		return strconv.Itoa(l.Len())
	}
	return "0"
}
