package notion

import "testing"

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "raw 32-char hex ID",
			input: "1429989fe8ac4effbc8f57f56486db54",
			want:  "1429989f-e8ac-4eff-bc8f-57f56486db54",
		},
		{
			name:  "UUID format passes through",
			input: "1429989f-e8ac-4eff-bc8f-57f56486db54",
			want:  "1429989f-e8ac-4eff-bc8f-57f56486db54",
		},
		{
			name:  "share URL with title slug",
			input: "https://www.notion.so/myspace/Household-Items-1429989fe8ac4effbc8f57f56486db54",
			want:  "1429989f-e8ac-4eff-bc8f-57f56486db54",
		},
		{
			name:  "database URL with view param",
			input: "https://www.notion.so/myspace/1429989fe8ac4effbc8f57f56486db54?v=abc123",
			want:  "1429989f-e8ac-4eff-bc8f-57f56486db54",
		},
		{
			name:  "bare URL without workspace",
			input: "https://www.notion.so/1429989fe8ac4effbc8f57f56486db54",
			want:  "1429989f-e8ac-4eff-bc8f-57f56486db54",
		},
		{
			name:  "surrounding whitespace",
			input: "  1429989fe8ac4effbc8f57f56486db54\n",
			want:  "1429989f-e8ac-4eff-bc8f-57f56486db54",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "no ID present",
			input:   "https://www.notion.so/myspace/some-page",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsNotionID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1429989fe8ac4effbc8f57f56486db54", true},
		{"1429989f-e8ac-4eff-bc8f-57f56486db54", true},
		{"kitchen", false},
		{"living-room", false},
		{"", false},
		{"1429989fe8ac4effbc8f57f56486db5", false}, // 31 chars
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsNotionID(tt.input); got != tt.want {
				t.Errorf("IsNotionID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
