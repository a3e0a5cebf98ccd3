// Package fieldname maps the Vietnamese labels used on movie detail pages
// to the English field names returned by the API.
package fieldname

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrUnknownLabel is returned by Translate for labels outside the table.
var ErrUnknownLabel = errors.New("unknown label")

var names = map[string]string{
	"Diễn viên":    "Actresses",
	"Đạo diễn":     "Directors",
	"Thể loại":     "Genres",
	"Quốc gia":     "Nation",
	"Thời lượng":   "Duration",
	"Lượt xem":     "Views",
	"Năm xuất bản": "Released year",
	"Điểm IMDb":    "IMDb score",
}

// Translate returns the canonical name for a source label. The label is
// NFC-normalised first, since pages mix precomposed and combining marks.
func Translate(label string) (string, error) {
	label = norm.NFC.String(strings.TrimSpace(label))
	if name, ok := names[label]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, label)
}

// Canonical is Translate with unknown labels falling back to the trimmed
// label itself. It never returns an empty name for a non-empty label.
func Canonical(label string) string {
	if name, err := Translate(label); err == nil {
		return name
	}
	return norm.NFC.String(strings.TrimSpace(label))
}

// StripLabel trims the raw label text and drops one trailing colon.
func StripLabel(raw string) string {
	s := strings.TrimSpace(raw)
	for _, colon := range []string{":", "："} {
		if strings.HasSuffix(s, colon) {
			return strings.TrimSpace(strings.TrimSuffix(s, colon))
		}
	}
	return s
}

// Labels returns the known source labels, sorted.
func Labels() []string {
	out := make([]string, 0, len(names))
	for k := range names {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
