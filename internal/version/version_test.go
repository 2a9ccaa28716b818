package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name string
		bi   debug.BuildInfo
		want Info
	}{
		{
			name: "vcs stamp",
			bi: debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: Info{Commit: "0123456", Modified: true},
		},
		{
			name: "module version",
			bi:   debug.BuildInfo{Main: debug.Module{Version: "v1.4.0"}},
			want: Info{Version: "v1.4.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Info
			fromBuildInfo(&got, &tt.bi)
			if got != tt.want {
				t.Errorf("fromBuildInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLdflagsWin(t *testing.T) {
	info := Info{Version: "v2.0.0", Commit: "feedbee"}
	fromBuildInfo(&info, &debug.BuildInfo{
		Main:     debug.Module{Version: "v1.0.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789"}},
	})
	if info.Version != "v2.0.0" || info.Commit != "feedbee" {
		t.Errorf("build info overrode ldflags: %+v", info)
	}
}

func TestFull(t *testing.T) {
	if got := Full(); !strings.Contains(got, "commit:") {
		t.Errorf("Full() = %q", got)
	}
}
