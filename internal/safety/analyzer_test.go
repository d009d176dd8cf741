package safety

import (
	"reflect"
	"testing"
)

func TestHasDangerousRedirect(t *testing.T) {
	cases := []struct {
		command string
		want    bool
	}{
		{"echo hi > file.txt", true},
		{"echo hi >file.txt", true},
		{"cat a >> b.log", true},
		{"echo hi 2>/dev/null", false},
		{"cmd 2>&1", false},
		{"cmd > /dev/null 2>&1", false},
		{"echo hi", false},
		{`echo "a > b"`, false},
		{"echo 'a > b'", false},
		{"grep -v '>' notes.txt", false},
		{"echo x >", true},
	}
	for _, tc := range cases {
		if got := hasDangerousRedirect(tc.command); got != tc.want {
			t.Errorf("hasDangerousRedirect(%q) = %v, want %v", tc.command, got, tc.want)
		}
	}
}

func TestSplitSegments(t *testing.T) {
	got := splitSegments("ls -la && cat a.txt | grep x; pwd")
	want := []string{"ls -la", "cat a.txt", "grep x", "pwd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitSegments = %v, want %v", got, want)
	}

	if got := splitSegments("  single  "); len(got) != 1 || got[0] != "single" {
		t.Errorf("splitSegments single = %v", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := normalize("  Git   STATUS \t--short "); got != "git status --short" {
		t.Errorf("normalize = %q", got)
	}
}
