// Tab-completion over the shell's fixed command table.
//
// Grounded on original_source/src/shell.c's shell_commands array and
// shell_collect_command_matches/shell_common_prefix_length: a prefix
// scan in table order (not sorted), then the longest common prefix
// across every match.
package main

// shellCommands is the shell's closed set of completable verbs, in the
// same order original_source/src/shell.c declares shell_commands.
var shellCommands = []string{
	"help", "clear", "uptime", "mem", "testmem", "history", "echo", "pwd", "ls", "cd",
	"touch", "cat", "write", "append", "mkdir", "rm", "savefs", "loadfs",
	"poweroff", "reboot",
}

// completionMatches returns every command beginning with prefix, in
// table order. An empty prefix matches everything.
func completionMatches(prefix string) []string {
	var matches []string
	for _, cmd := range shellCommands {
		if len(prefix) == 0 || (len(cmd) >= len(prefix) && cmd[:len(prefix)] == prefix) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

// commonPrefixLength returns the length of the longest prefix shared by
// every string in matches, matching shell_common_prefix_length.
func commonPrefixLength(matches []string) int {
	if len(matches) == 0 {
		return 0
	}
	minLen := len(matches[0])
	for _, m := range matches[1:] {
		if len(m) < minLen {
			minLen = len(m)
		}
	}
	for pos := 0; pos < minLen; pos++ {
		ch := matches[0][pos]
		for _, m := range matches[1:] {
			if m[pos] != ch {
				return pos
			}
		}
	}
	return minLen
}
