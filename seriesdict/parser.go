package seriesdict

import (
	"sort"
	"strings"

	"github.com/macneib/Akumuli/errs"
)

// MaxSeriesNameLength is the largest accepted raw series name, in bytes.
const MaxSeriesNameLength = 512

// ToNormalForm parses "metric key1=v1 key2=v2 ..." and re-emits it with
// tags sorted lexicographically by key and exactly one space separating
// tokens. Fails with errs.ErrBadData on malformed input (missing metric,
// no tags, a tag without exactly one '=') or errs.ErrBadArg if name
// exceeds MaxSeriesNameLength.
func ToNormalForm(name string) (string, error) {
	if len(name) > MaxSeriesNameLength {
		return "", errs.New(errs.CodeBadArg, nil)
	}

	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", errs.New(errs.CodeBadData, nil)
	}

	metric := fields[0]
	tags := fields[1:]

	if len(tags) == 0 {
		return "", errs.New(errs.CodeBadData, nil)
	}

	for _, tag := range tags {
		if strings.Count(tag, "=") != 1 {
			return "", errs.New(errs.CodeBadData, nil)
		}

		key, _, _ := strings.Cut(tag, "=")
		if key == "" {
			return "", errs.New(errs.CodeBadData, nil)
		}
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return tagKey(tags[i]) < tagKey(tags[j])
	})

	var b strings.Builder

	b.WriteString(metric)

	for _, tag := range tags {
		b.WriteByte(' ')
		b.WriteString(tag)
	}

	return b.String(), nil
}

func tagKey(tag string) string {
	key, _, _ := strings.Cut(tag, "=")

	return key
}

// FilterTags projects a normal-form series name down to only the tags
// named in keep, preserving sort order. keep maps tag key -> true.
func FilterTags(normalized string, keep map[string]bool) (string, error) {
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return "", errs.New(errs.CodeBadData, nil)
	}

	metric := fields[0]

	var b strings.Builder

	b.WriteString(metric)

	for _, tag := range fields[1:] {
		if keep[tagKey(tag)] {
			b.WriteByte(' ')
			b.WriteString(tag)
		}
	}

	return b.String(), nil
}
