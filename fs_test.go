package main

import (
	"strings"
	"testing"
)

func resetFS() {
	fsRoot = nil
	fsCwd = nil
	FSInit()
}

func TestFSInitSeedsDemoTree(t *testing.T) {
	resetFS()
	if !FSIsDir("/etc") || !FSIsDir("/docs") {
		t.Fatal("FSInit should seed /etc and /docs")
	}
	if !FSExists("/etc/motd") || !FSExists("/docs/readme.txt") {
		t.Fatal("FSInit should seed /etc/motd and /docs/readme.txt")
	}
	data, err := FSReadFile("/etc/motd")
	if err != nil || len(data) == 0 {
		t.Fatalf("reading seeded /etc/motd: data=%q err=%v", data, err)
	}
}

func TestFSMkdirAndExist(t *testing.T) {
	resetFS()
	if err := FSMkdir("/srv"); err != nil {
		t.Fatalf("mkdir /srv: %v", err)
	}
	if err := FSMkdir("/srv"); !isExist(err) {
		t.Fatalf("mkdir existing dir = %v, want Exist", err)
	}
}

func TestFSMkdirMissingParent(t *testing.T) {
	resetFS()
	if err := FSMkdir("/no/such/parent"); err == nil {
		t.Fatal("mkdir under a missing parent should fail")
	}
}

func TestFSMkdirThroughFileIsNotDirError(t *testing.T) {
	resetFS()
	FSCreateFile("/plain")
	err := FSMkdir("/plain/sub")
	if errKind(err) != KindNotDir {
		t.Fatalf("mkdir through a file = %v, want NotDir", err)
	}
}

func TestFSCreateWriteReadRoundTrip(t *testing.T) {
	resetFS()
	if err := FSMkdir("/home"); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := FSCreateFile("/home/x.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := FSWriteFile("/home/x.txt", []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := FSReadFile("/home/x.txt")
	if err != nil || string(data) != "hello" {
		t.Fatalf("read = (%q, %v), want (hello, nil)", data, err)
	}
}

func TestFSAppendFile(t *testing.T) {
	resetFS()
	FSCreateFile("/a")
	FSWriteFile("/a", []byte("foo"))
	if err := FSAppendFile("/a", []byte("bar")); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, _ := FSReadFile("/a")
	if string(data) != "foobar" {
		t.Fatalf("append result = %q, want foobar", data)
	}
}

func TestFSWriteToDirectoryIsIsDirError(t *testing.T) {
	resetFS()
	FSMkdir("/d")
	if err := FSWriteFile("/d", []byte("x")); err == nil {
		t.Fatal("writing a directory as a file should fail")
	}
}

func TestFSChangeDirAndRelativePaths(t *testing.T) {
	resetFS()
	FSMkdir("/a")
	FSMkdir("/a/b")
	if err := FSChangeDir("/a"); err != nil {
		t.Fatalf("cd /a: %v", err)
	}
	if err := FSChangeDir("b"); err != nil {
		t.Fatalf("cd b (relative): %v", err)
	}
	if FSGetCWD() != "/a/b" {
		t.Fatalf("cwd = %q, want /a/b", FSGetCWD())
	}
	if err := FSChangeDir(".."); err != nil {
		t.Fatalf("cd ..: %v", err)
	}
	if FSGetCWD() != "/a" {
		t.Fatalf("cwd after .. = %q, want /a", FSGetCWD())
	}
}

func TestFSChangeDirToFileFails(t *testing.T) {
	resetFS()
	FSCreateFile("/f")
	if err := FSChangeDir("/f"); err == nil {
		t.Fatal("cd into a file should fail")
	}
}

func TestFSListDirNewestFirst(t *testing.T) {
	resetFS()
	FSMkdir("/x")
	FSCreateFile("/x/one")
	FSCreateFile("/x/two")
	entries, err := FSListDir("/x")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "two" || entries[1].Name != "one" {
		t.Fatalf("entries = %+v, want [two, one] (newest first)", entries)
	}
}

func TestFSRemoveRequiresRecursiveForNonEmptyDir(t *testing.T) {
	resetFS()
	FSMkdir("/p")
	FSCreateFile("/p/child")
	if err := FSRemove("/p", false); err == nil {
		t.Fatal("removing a non-empty directory without recursive should fail")
	}
	if err := FSRemove("/p", true); err != nil {
		t.Fatalf("recursive remove: %v", err)
	}
	if FSExists("/p") {
		t.Fatal("/p should be gone after recursive remove")
	}
}

func TestFSRemoveRootRejected(t *testing.T) {
	resetFS()
	if err := FSRemove("/", false); err == nil {
		t.Fatal("removing root should always fail")
	}
}

func TestFSRemoveCwdMovesUpToParent(t *testing.T) {
	resetFS()
	FSMkdir("/q")
	FSChangeDir("/q")
	if err := FSRemove("/q", false); err != nil {
		t.Fatalf("remove cwd: %v", err)
	}
	if FSGetCWD() != "/" {
		t.Fatalf("cwd after removing itself = %q, want /", FSGetCWD())
	}
}

func TestFSPersistenceUnavailableWithoutDisk(t *testing.T) {
	ata = ataDrive{}
	if FSPersistenceAvailable() {
		t.Fatal("FSPersistenceAvailable should be false with no ATA drive")
	}
	if err := FSSave(); err == nil {
		t.Fatal("FSSave should fail with no ATA drive")
	}
	if err := FSLoad(); err == nil {
		t.Fatal("FSLoad should fail with no ATA drive")
	}
}

func TestFSPathLengthLimitEnforced(t *testing.T) {
	resetFS()
	comp := strings.Repeat("d", 30)

	// Every component is individually legal (30 < fsMaxNameLen), so only
	// the absolute-path bound can stop the nesting. Each level adds 31
	// bytes ("/" + component): eight levels is 248 bytes and fine, the
	// ninth would be 279 and must be rejected with Invalid.
	path := ""
	var err error
	for i := 0; i < 12; i++ {
		path += "/" + comp
		if err = FSMkdir(path); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("nested mkdir never hit the absolute-path length limit")
	}
	if errKind(err) != KindInvalid {
		t.Fatalf("over-long path rejected with %v, want Invalid", err)
	}
	if len(path) <= fsMaxPathLen-1 {
		t.Fatalf("rejected a %d-byte path, which is within the %d-byte limit", len(path), fsMaxPathLen-1)
	}
	parent := path[:strings.LastIndexByte(path, '/')]
	if !FSIsDir(parent) {
		t.Fatalf("parent %q (len %d) should have been created before the limit bit", parent, len(parent))
	}

	// A file create under the deepest surviving directory must obey the
	// same bound.
	if err := FSCreateFile(parent + "/" + comp); errKind(err) != KindInvalid {
		t.Fatalf("over-long create_file = %v, want Invalid", err)
	}
}

func TestFSNameTooLongRejected(t *testing.T) {
	resetFS()
	long := make([]byte, fsMaxNameLen+5)
	for i := range long {
		long[i] = 'a'
	}
	if err := FSMkdir("/" + string(long)); err == nil {
		t.Fatal("a path component over fsMaxNameLen-1 bytes should be rejected")
	}
}
