package logger

import "testing"

func TestNewValidatesLevelAndFormat(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		wantErr bool
	}{
		{level: "info", format: ""},
		{level: "DEBUG", format: "json"},
		{level: "warn", format: "console"},
		{level: "loud", format: "json", wantErr: true},
		{level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		log, err := New(tt.level, tt.format)
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q, %q): expected error", tt.level, tt.format)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%q, %q): %v", tt.level, tt.format, err)
			continue
		}
		_ = log.Sync()
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected nop logger")
	}
}
