package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"cli name", CLIName(), "railyard"},
		{"env prefix", EnvPrefix(), "RAILYARD"},
		{"home dir", HomeDir(), ".railyard"},
		{"temp prefix", TempDirPrefix(), "rail-yard-"},
		{"template repo", TemplateRepoURL(), "https://github.com/ankurp/rail-yard.git"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("skip_git"); got != "RAILYARD_SKIP_GIT" {
		t.Errorf("EnvVar(skip_git) = %q, want RAILYARD_SKIP_GIT", got)
	}
}
