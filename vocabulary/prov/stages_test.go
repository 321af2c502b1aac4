package prov

import (
	"reflect"
	"testing"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		name string
		want Stage
		ok   bool
	}{
		{"raw", StageRaw, true},
		{"RAW", StageRaw, true},
		{"RawP", StageRawP, true},
		{"dcho", StageDCHO, true},
		{"DCHOO", StageDCHOO, true},
		{"thumbnails", Stage("thumbnails"), false},
		{"", Stage(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseStage(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseStage(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStageSteps(t *testing.T) {
	tests := []struct {
		stage Stage
		want  []string
	}{
		{StageRaw, []string{"00"}},
		{StageRawP, []string{"00", "01"}},
		{StageDCHO, []string{"00", "01", "02"}},
		{StageDCHOO, []string{"00", "01", "02", "03", "04", "05", "06"}},
	}
	for _, tt := range tests {
		if got := tt.stage.Steps(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s.Steps() = %v, want %v", tt.stage, got, tt.want)
		}
	}
	if Stage("bogus").Steps() != nil {
		t.Errorf("unknown stage must have nil steps")
	}
}

func TestStagesOrder(t *testing.T) {
	want := []Stage{StageRaw, StageRawP, StageDCHO, StageDCHOO}
	if got := Stages(); !reflect.DeepEqual(got, want) {
		t.Errorf("Stages() = %v", got)
	}
	for _, s := range want {
		if !s.Known() {
			t.Errorf("%s must be known", s)
		}
	}
}
