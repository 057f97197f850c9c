package main

import "testing"

func TestSearchHistoryFindsNewestMatch(t *testing.T) {
	h := shellHistory{entries: []string{"ls /etc", "cd /etc", "cat /etc/motd"}}
	line, idx, ok := searchHistory(&h, "etc")
	if !ok || line != "cat /etc/motd" || idx != 2 {
		t.Fatalf("searchHistory = (%q, %d, %v), want (\"cat /etc/motd\", 2, true)", line, idx, ok)
	}
}

func TestSearchHistoryNoMatch(t *testing.T) {
	h := shellHistory{entries: []string{"ls", "pwd"}}
	if _, _, ok := searchHistory(&h, "xyz"); ok {
		t.Fatal("searchHistory should report no match")
	}
}

func TestSearchHistoryEmptyTerm(t *testing.T) {
	h := shellHistory{entries: []string{"ls"}}
	if _, _, ok := searchHistory(&h, ""); ok {
		t.Fatal("an empty search term should never match")
	}
}
