package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
		},
	}
	tests := []struct {
		name string
		in   Build
		bi   *debug.BuildInfo
		want Build
	}{
		{
			name: "unstamped",
			in:   Build{Version: "dev", Commit: "none", Date: "unknown"},
			bi:   bi,
			want: Build{Version: "v0.3.0", Commit: "abc123", Date: "2024-05-01T10:00:00Z"},
		},
		{
			name: "stamped wins",
			in:   Build{Version: "v1.0.0", Commit: "fff", Date: "2025-01-01"},
			bi:   bi,
			want: Build{Version: "v1.0.0", Commit: "fff", Date: "2025-01-01"},
		},
		{
			name: "devel module",
			in:   Build{Version: "dev", Commit: "none", Date: "unknown"},
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Build{Version: "dev", Commit: "none", Date: "unknown"},
		},
		{
			name: "no build info",
			in:   Build{Version: "dev", Commit: "none", Date: "unknown"},
			want: Build{Version: "dev", Commit: "none", Date: "unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.in, tt.bi); got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	tpl := Template()
	if !strings.HasPrefix(tpl, "{{.Name}} version ") || !strings.Contains(tpl, "commit: ") {
		t.Errorf("Template() = %q", tpl)
	}
}
