package main

import "testing"

func TestCompletionMatchesByPrefix(t *testing.T) {
	matches := completionMatches("he")
	if len(matches) != 1 || matches[0] != "help" {
		t.Fatalf("completionMatches(%q) = %v, want [help]", "he", matches)
	}
}

func TestCompletionMatchesMultiplePrefixes(t *testing.T) {
	matches := completionMatches("l")
	if len(matches) != 2 || matches[0] != "ls" || matches[1] != "loadfs" {
		t.Fatalf("completionMatches(%q) = %v, want [ls loadfs]", "l", matches)
	}
}

func TestCompletionMatchesEmptyPrefixReturnsAll(t *testing.T) {
	matches := completionMatches("")
	if len(matches) != len(shellCommands) {
		t.Fatalf("completionMatches(\"\") returned %d entries, want %d", len(matches), len(shellCommands))
	}
}

func TestCompletionMatchesNone(t *testing.T) {
	if matches := completionMatches("zzz"); matches != nil {
		t.Fatalf("completionMatches(zzz) = %v, want nil", matches)
	}
}

func TestCommonPrefixLength(t *testing.T) {
	cases := []struct {
		matches []string
		want    int
	}{
		{[]string{"help"}, 4},
		{[]string{"write", "while-not-a-real-command"}, 1},
		{nil, 0},
		{[]string{"savefs", "search-not-real"}, 1},
	}
	for _, c := range cases {
		if got := commonPrefixLength(c.matches); got != c.want {
			t.Errorf("commonPrefixLength(%v) = %d, want %d", c.matches, got, c.want)
		}
	}
}
