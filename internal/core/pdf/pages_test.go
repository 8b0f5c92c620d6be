package pdf

import (
	"reflect"
	"testing"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{"single page", "5", []int{5}, false},
		{"list", "1,3,2", []int{1, 2, 3}, false},
		{"range", "2-5", []int{2, 3, 4, 5}, false},
		{"mixed", "1-3,7,12", []int{1, 2, 3, 7, 12}, false},
		{"duplicates collapse", "1,1,1-2", []int{1, 2}, false},
		{"spaces tolerated", " 1 , 3 - 4 ", []int{1, 3, 4}, false},
		{"trailing comma", "1,2,", []int{1, 2}, false},
		{"zero page", "0", nil, true},
		{"backwards range", "5-2", nil, true},
		{"garbage", "abc", nil, true},
		{"garbage range", "1-x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSelection(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSelection(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestClampSelection(t *testing.T) {
	got := ClampSelection([]int{9, 1, 0, 3, 3, 12, -1}, 10)
	want := []int{1, 3, 9}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ClampSelection() = %v, want %v", got, want)
	}

	if got := ClampSelection([]int{11, 12}, 10); len(got) != 0 {
		t.Errorf("All pages out of range should clamp to empty, got %v", got)
	}
}

func TestFormatSelection(t *testing.T) {
	tests := []struct {
		pages []int
		want  string
	}{
		{nil, ""},
		{[]int{4}, "4"},
		{[]int{1, 2, 3}, "1-3"},
		{[]int{3, 1, 2, 7, 12, 13}, "1-3,7,12-13"},
		{[]int{5, 5, 6}, "5-6"},
	}

	for _, tt := range tests {
		if got := FormatSelection(tt.pages); got != tt.want {
			t.Errorf("FormatSelection(%v) = %q, want %q", tt.pages, got, tt.want)
		}
	}
}
