package analyzer

import (
	"errors"
	"testing"
)

func TestExtractDiff(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{
			name:  "well formed",
			reply: "Here it is:\n```bash\ndiff --git a/x b/x\n+y\n```\nDone.",
			want:  "diff --git a/x b/x\n+y",
		},
		{
			name:  "block only",
			reply: "```bash\nX\n```",
			want:  "X",
		},
		{
			name:  "first block wins",
			reply: "```bash\nfirst\n```\n```bash\nsecond\n```",
			want:  "first",
		},
		{
			name:  "empty block",
			reply: "```bash\n\n```",
			want:  "",
		},
		{
			name:    "missing close fence",
			reply:   "```bash\ndiff --git a/x b/x\n+y",
			wantErr: true,
		},
		{
			name:    "missing open fence",
			reply:   "diff --git a/x b/x\n```",
			wantErr: true,
		},
		{
			name:    "other language",
			reply:   "```diff\n-a\n+b\n```",
			wantErr: true,
		},
		{
			name:    "empty reply",
			reply:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractDiff(tt.reply)
			if tt.wantErr {
				if !errors.Is(err, ErrNoDiffBlock) {
					t.Fatalf("ExtractDiff() error = %v, want ErrNoDiffBlock", err)
				}
				if got != "" {
					t.Errorf("ExtractDiff() returned partial result %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractDiff() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractDiff() = %q, want %q", got, tt.want)
			}
		})
	}
}
