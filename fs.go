// In-memory filesystem: a tree of directory and file nodes rooted at
// "/", addressed by absolute or cwd-relative paths with "." and ".."
// components.
//
// Grounded on original_source/src/filesystem.c: the node shape (name,
// type, parent, children, byte buffer with a separately tracked
// capacity), the path-walking algorithm (fs_walk/fs_prepare_parent),
// the power-of-two-from-64 growth strategy (fs_reserve), and the
// child-list order (fs_attach_child prepends, so the most recently
// created entry lists first - kept here for behavioral fidelity rather
// than changed to alphabetical, which the original never does).
package main

const (
	fsMaxNameLen = 32  // original_source/include/filesystem.h's FS_MAX_NAME_LEN
	fsMaxPathLen = 256 // FS_MAX_PATH_LEN; absolute paths carry at most 255 bytes
)

type fsNodeType int

const (
	fsNodeDirectory fsNodeType = iota
	fsNodeFile
)

type fsNode struct {
	name     string
	typ      fsNodeType
	parent   *fsNode
	children []*fsNode // newest first, matching fs_attach_child's prepend
	data     []byte
	size     int
	capacity int
}

var fsRoot *fsNode
var fsCwd *fsNode

// FSDirEntry is one row of a directory listing (spec.md §4.F's ls
// output), matching fs_dir_entry_t.
type FSDirEntry struct {
	Name  string
	Size  int
	IsDir bool
}

func fsAllocNode(name string, typ fsNodeType) *fsNode {
	return &fsNode{name: name, typ: typ}
}

func fsFindChild(parent *fsNode, name string) *fsNode {
	if parent == nil || parent.typ != fsNodeDirectory {
		return nil
	}
	for _, c := range parent.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func fsAttachChild(parent, child *fsNode) {
	child.parent = parent
	parent.children = append([]*fsNode{child}, parent.children...)
}

func fsDetachChild(node *fsNode) {
	if node == nil || node.parent == nil {
		return
	}
	siblings := node.parent.children
	for i, c := range siblings {
		if c == node {
			node.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	node.parent = nil
}

func fsClearChildren(node *fsNode) {
	if node == nil {
		return
	}
	node.children = nil
}

// fsSplitPath lowers a raw path string into (absolute, components),
// where components may include "." and "..", matching fs_read_component
// skipping over repeated '/' separators rather than collapsing them
// into a single empty component.
func fsSplitPath(path string) (absolute bool, components []string) {
	if path == "" {
		return false, nil
	}
	absolute = path[0] == '/'
	i := 0
	for i < len(path) {
		for i < len(path) && path[i] == '/' {
			i++
		}
		start := i
		for i < len(path) && path[i] != '/' {
			i++
		}
		if i > start {
			components = append(components, path[start:i])
		}
	}
	return absolute, components
}

func fsStartForPath(path string) *fsNode {
	if fsRoot == nil {
		return nil
	}
	if path == "" {
		if fsCwd != nil {
			return fsCwd
		}
		return fsRoot
	}
	if path[0] == '/' {
		return fsRoot
	}
	if fsCwd != nil {
		return fsCwd
	}
	return fsRoot
}

// fsWalk resolves path to a node, or nil if any component doesn't
// exist, matching fs_walk's return-NULL-on-first-miss behavior.
func fsWalk(path string) *fsNode {
	current := fsStartForPath(path)
	if current == nil {
		return nil
	}
	if path == "" {
		return current
	}

	_, components := fsSplitPath(path)
	for _, comp := range components {
		if len(comp) > fsMaxNameLen-1 {
			return nil
		}
		if comp == "." {
			continue
		}
		if comp == ".." {
			if current.parent != nil {
				current = current.parent
			}
			continue
		}
		if current.typ != fsNodeDirectory {
			return nil
		}
		next := fsFindChild(current, comp)
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// fsPrepareParent splits path into the directory node that should hold
// its final component and that component's name, matching
// fs_prepare_parent's rejection of a path whose leaf is empty, ".", or
// "..", and its NOENT when an intermediate directory doesn't exist.
func fsPrepareParent(path string) (parent *fsNode, leaf string, err error) {
	if path == "" {
		return nil, "", newErr(KindInvalid, "fs.path", path)
	}
	current := fsStartForPath(path)
	if current == nil {
		return nil, "", newErr(KindInvalid, "fs.path", path)
	}
	absolute, components := fsSplitPath(path)
	if absolute {
		current = fsRoot
	}
	if len(components) == 0 {
		return nil, "", newErr(KindInvalid, "fs.path", path)
	}

	for i, comp := range components {
		more := i != len(components)-1
		if len(comp) > fsMaxNameLen-1 {
			return nil, "", newErr(KindInvalid, "fs.path", path)
		}
		if !more {
			if comp == "" || comp == "." || comp == ".." {
				return nil, "", newErr(KindInvalid, "fs.path", path)
			}
			return current, comp, nil
		}
		if comp == "." {
			continue
		}
		if comp == ".." {
			if current.parent != nil {
				current = current.parent
			}
			continue
		}
		next := fsFindChild(current, comp)
		if next == nil {
			return nil, "", newErr(KindNotFound, "fs.path", path)
		}
		if next.typ != fsNodeDirectory {
			return nil, "", newErr(KindNotDir, "fs.path", path)
		}
		current = next
	}
	return nil, "", newErr(KindInvalid, "fs.path", path)
}

// fsReserve grows node.data to hold at least newSize bytes, doubling
// from a 64-byte baseline, matching fs_reserve exactly.
func fsReserve(node *fsNode, newSize int) error {
	if node == nil {
		return newErr(KindInvalid, "fs.reserve", "")
	}
	if newSize <= node.capacity {
		return nil
	}
	capacity := node.capacity
	if capacity == 0 {
		capacity = 64
	}
	for capacity < newSize {
		capacity *= 2
	}
	buf := make([]byte, capacity)
	if node.size > 0 {
		copy(buf, node.data[:node.size])
	}
	node.data = buf
	node.capacity = capacity
	return nil
}

// fsPathTooLong reports whether attaching leaf under parent would give
// the node an absolute path longer than fsMaxPathLen-1 bytes, the most
// the disk image's path field can carry. Checked at create time so the
// error surfaces at mkdir/touch instead of at the first save, which is
// where the original's fs_write_entry bound would otherwise catch it.
func fsPathTooLong(parent *fsNode, leaf string) bool {
	n := len(fsBuildPath(parent))
	if parent != fsRoot {
		n++ // separating '/'
	}
	return n+len(leaf) > fsMaxPathLen-1
}

func fsBuildPath(node *fsNode) string {
	if node == nil || node == fsRoot {
		return "/"
	}
	var names []string
	for n := node; n != nil && n != fsRoot; n = n.parent {
		names = append(names, n.name)
	}
	path := "/"
	for i := len(names) - 1; i >= 0; i-- {
		path += names[i]
		if i != 0 {
			path += "/"
		}
	}
	return path
}

func fsSeed() {
	FSMkdir("/etc")
	FSCreateFile("/etc/motd")
	FSWriteFile("/etc/motd", []byte("Welcome to MyOs!\nUse 'help' to discover shell commands.\n"))

	FSMkdir("/docs")
	FSCreateFile("/docs/readme.txt")
	FSWriteFile("/docs/readme.txt", []byte(
		"MyOs RAM filesystem demo.\n"+
			"Try: ls, cd, pwd, cat, touch, write, append, mkdir, rm, savefs, loadfs.\n"))
}

// FSInit creates the root directory and, if an ATA disk is present,
// attempts to load a previously saved image before falling back to the
// seeded demo tree (and immediately persisting it), matching fs_init.
func FSInit() {
	fsRoot = fsAllocNode("/", fsNodeDirectory)
	fsRoot.parent = fsRoot
	fsCwd = fsRoot

	if FSPersistenceAvailable() {
		if err := fsImageLoad(); err == nil {
			return
		}
	}

	fsSeed()
	if FSPersistenceAvailable() {
		fsImageSave()
	}
}

// FSMkdir creates a new directory at path.
func FSMkdir(path string) error {
	if fsRoot == nil {
		return newErr(KindInvalid, "fs.mkdir", path)
	}
	if fsWalk(path) != nil {
		return newErr(KindExist, "fs.mkdir", path)
	}
	parent, leaf, err := fsPrepareParent(path)
	if err != nil {
		return err
	}
	if parent.typ != fsNodeDirectory {
		return newErr(KindNotDir, "fs.mkdir", path)
	}
	if fsPathTooLong(parent, leaf) {
		return newErr(KindInvalid, "fs.mkdir", path)
	}
	fsAttachChild(parent, fsAllocNode(leaf, fsNodeDirectory))
	return nil
}

// FSCreateFile creates a new, empty file at path.
func FSCreateFile(path string) error {
	if fsRoot == nil {
		return newErr(KindInvalid, "fs.create", path)
	}
	if fsWalk(path) != nil {
		return newErr(KindExist, "fs.create", path)
	}
	parent, leaf, err := fsPrepareParent(path)
	if err != nil {
		return err
	}
	if parent.typ != fsNodeDirectory {
		return newErr(KindNotDir, "fs.create", path)
	}
	if fsPathTooLong(parent, leaf) {
		return newErr(KindInvalid, "fs.create", path)
	}
	fsAttachChild(parent, fsAllocNode(leaf, fsNodeFile))
	return nil
}

// FSWriteFile replaces path's contents with data.
func FSWriteFile(path string, data []byte) error {
	node := fsWalk(path)
	if node == nil {
		return newErr(KindNotFound, "fs.write", path)
	}
	if node.typ != fsNodeFile {
		return newErr(KindIsDir, "fs.write", path)
	}
	if err := fsReserve(node, len(data)); err != nil {
		return err
	}
	copy(node.data, data)
	node.size = len(data)
	return nil
}

// FSAppendFile appends data to path's existing contents.
func FSAppendFile(path string, data []byte) error {
	node := fsWalk(path)
	if node == nil {
		return newErr(KindNotFound, "fs.append", path)
	}
	if node.typ != fsNodeFile {
		return newErr(KindIsDir, "fs.append", path)
	}
	if err := fsReserve(node, node.size+len(data)); err != nil {
		return err
	}
	copy(node.data[node.size:], data)
	node.size += len(data)
	return nil
}

// FSReadFile returns a copy of path's contents.
func FSReadFile(path string) ([]byte, error) {
	node := fsWalk(path)
	if node == nil {
		return nil, newErr(KindNotFound, "fs.read", path)
	}
	if node.typ != fsNodeFile {
		return nil, newErr(KindIsDir, "fs.read", path)
	}
	out := make([]byte, node.size)
	copy(out, node.data[:node.size])
	return out, nil
}

// FSFileData returns path's live backing slice without copying,
// matching fs_get_file_data; callers must not retain it across a write
// to the same file.
func FSFileData(path string) ([]byte, error) {
	node := fsWalk(path)
	if node == nil || node.typ != fsNodeFile {
		return nil, newErr(KindNotFound, "fs.data", path)
	}
	return node.data[:node.size], nil
}

// FSListDir returns path's direct children, newest-first.
func FSListDir(path string) ([]FSDirEntry, error) {
	node := fsWalk(path)
	if node == nil {
		return nil, newErr(KindNotFound, "fs.list", path)
	}
	if node.typ != fsNodeDirectory {
		return nil, newErr(KindNotDir, "fs.list", path)
	}
	entries := make([]FSDirEntry, 0, len(node.children))
	for _, c := range node.children {
		entries = append(entries, FSDirEntry{Name: c.name, Size: c.size, IsDir: c.typ == fsNodeDirectory})
	}
	return entries, nil
}

// FSChangeDir sets the current working directory.
func FSChangeDir(path string) error {
	node := fsWalk(path)
	if node == nil {
		return newErr(KindNotFound, "fs.cd", path)
	}
	if node.typ != fsNodeDirectory {
		return newErr(KindNotDir, "fs.cd", path)
	}
	fsCwd = node
	return nil
}

// FSGetCWD returns the absolute path of the current working directory.
func FSGetCWD() string {
	return fsBuildPath(fsCwd)
}

// FSExists reports whether path resolves to any node.
func FSExists(path string) bool {
	return fsWalk(path) != nil
}

// FSIsDir reports whether path resolves to a directory.
func FSIsDir(path string) bool {
	node := fsWalk(path)
	return node != nil && node.typ == fsNodeDirectory
}

// FSRemove deletes path. A non-empty directory requires recursive=true,
// matching fs_remove; the root itself can never be removed.
func FSRemove(path string, recursive bool) error {
	node := fsWalk(path)
	if node == nil {
		return newErr(KindNotFound, "fs.rm", path)
	}
	if node == fsRoot {
		return newErr(KindInvalid, "fs.rm", path)
	}
	if node.typ == fsNodeDirectory && len(node.children) > 0 && !recursive {
		return newErr(KindNotEmpty, "fs.rm", path)
	}
	if node == fsCwd {
		if node.parent != nil {
			fsCwd = node.parent
		} else {
			fsCwd = fsRoot
		}
	}
	fsDetachChild(node)
	return nil
}
