package logging

import "testing"

func TestNewFallsBackToInfo(t *testing.T) {
	logger, err := New("verbose")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Error("expected debug to be disabled when level is invalid")
	}
}

func TestMaskDocument(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{"01234567890", "*********90"},
		{"12", "**"},
		{"", "**"},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			if got := MaskDocument(tt.doc); got != tt.want {
				t.Errorf("MaskDocument(%q) = %v, want %v", tt.doc, got, tt.want)
			}
		})
	}
}
