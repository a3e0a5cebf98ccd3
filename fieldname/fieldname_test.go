package fieldname

import (
	"errors"
	"testing"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Diễn viên", "Actresses"},
		{"Đạo diễn", "Directors"},
		{"Thể loại", "Genres"},
		{"Quốc gia", "Nation"},
		{"Thời lượng", "Duration"},
		{"Lượt xem", "Views"},
		{"Năm xuất bản", "Released year"},
		{"Điểm IMDb", "IMDb score"},
		{"  Diễn viên ", "Actresses"},
		{"Die\u0302\u0303n vie\u0302n", "Actresses"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := Translate(tt.label)
			if err != nil {
				t.Fatalf("Translate(%q) error: %v", tt.label, err)
			}
			if got != tt.want {
				t.Errorf("Translate(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestTranslate_Unknown(t *testing.T) {
	got, err := Translate("Chất lượng")
	if !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got %v", err)
	}
	if got != "" {
		t.Errorf("unknown label should translate to empty, got %q", got)
	}
}

func TestCanonical(t *testing.T) {
	if got := Canonical("Thể loại"); got != "Genres" {
		t.Errorf("Canonical(known) = %q, want Genres", got)
	}
	if got := Canonical(" Chất lượng "); got != "Chất lượng" {
		t.Errorf("Canonical(unknown) = %q, want the trimmed label", got)
	}
}

func TestStripLabel(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"Diễn viên:", "Diễn viên"},
		{" Đạo diễn : ", "Đạo diễn"},
		{"Quốc gia：", "Quốc gia"},
		{"Lượt xem", "Lượt xem"},
		{"", ""},
		{"::", ":"},
	}
	for _, tt := range tests {
		if got := StripLabel(tt.raw); got != tt.want {
			t.Errorf("StripLabel(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestStripThenTranslate(t *testing.T) {
	got, err := Translate(StripLabel("Diễn viên:"))
	if err != nil || got != "Actresses" {
		t.Errorf("got %q, %v; want Actresses", got, err)
	}
}

func TestLabels(t *testing.T) {
	labels := Labels()
	if len(labels) != 8 {
		t.Fatalf("len(Labels()) = %d, want 8", len(labels))
	}
	for i := 1; i < len(labels); i++ {
		if labels[i-1] > labels[i] {
			t.Errorf("labels not sorted: %q > %q", labels[i-1], labels[i])
		}
	}
}
