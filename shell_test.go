package main

import "testing"

func TestMatchVerbExact(t *testing.T) {
	args, ok := matchVerb("pwd", "pwd")
	if !ok || args != "" {
		t.Fatalf("matchVerb(pwd, pwd) = (%q, %v), want (\"\", true)", args, ok)
	}
}

func TestMatchVerbWithArgs(t *testing.T) {
	args, ok := matchVerb("cd   /etc", "cd")
	if !ok || args != "/etc" {
		t.Fatalf("matchVerb(cd   /etc, cd) = (%q, %v), want (\"/etc\", true)", args, ok)
	}
}

func TestMatchVerbNoMatch(t *testing.T) {
	if _, ok := matchVerb("catalog", "cat"); ok {
		t.Fatal("matchVerb should not match a verb that is only a prefix of a longer token")
	}
	if _, ok := matchVerb("ls", "cd"); ok {
		t.Fatal("matchVerb should not match an unrelated verb")
	}
}

func TestFirstToken(t *testing.T) {
	if got := firstToken("echo hello world"); got != "echo" {
		t.Errorf("firstToken = %q, want echo", got)
	}
	if got := firstToken("help"); got != "help" {
		t.Errorf("firstToken = %q, want help", got)
	}
}

func TestShellBuildPromptPathRoot(t *testing.T) {
	resetFS()
	if got := shellBuildPromptPath(); got != "~" {
		t.Errorf("shellBuildPromptPath() at root = %q, want ~", got)
	}
}

func TestShellBuildPromptPathSubdir(t *testing.T) {
	resetFS()
	if err := FSChangeDir("/etc"); err != nil {
		t.Fatalf("cd /etc: %v", err)
	}
	if got := shellBuildPromptPath(); got != "~etc" {
		t.Errorf("shellBuildPromptPath() in /etc = %q, want ~etc", got)
	}
}

func TestErrKind(t *testing.T) {
	if got := errKind(newErr(KindNoMem, "op", "")); got != KindNoMem {
		t.Errorf("errKind = %v, want KindNoMem", got)
	}
	if got := errKind(nil); got != KindInvalid {
		t.Errorf("errKind(nil-typed non-KernelError) = %v, want KindInvalid", got)
	}
}
