// Boot configuration: typed accessors over a key=value parameter blob
// the bootloader leaves in memory (out of scope per spec.md §1 — we
// only consume it once it is already a flat "KEY=VALUE\n" text blob,
// never touch Multiboot/whatever structure produced it).
//
// Modeled on github.com/xyproto/env/v2's API shape (Int(key, default),
// Bool(key, default)): the teacher's go.mod lists env/v2 but the
// teacher's own code never imports it (a compiler reads its flags from
// os.Args, not the environment). A freestanding kernel has no
// os.Environ either, so only the "typed accessor with a default"
// pattern survives here, applied to a boot-parameter blob instead of
// process environment variables; the hosted cmd/diskimage tool imports
// the real package.
package main

import "strconv"

// bootParams holds the parsed KEY=VALUE pairs. A zero value (no blob
// supplied) makes every accessor fall back to its default, so boot
// works identically whether or not the bootloader left one.
type bootParams struct {
	values map[string]string
}

var bootcfg bootParams

// bootParamsBlob is the parameter blob kmain hands to BootcfgParse.
// Nothing in this repository assigns it (boot_amd64.s's _start only
// installs a stack), so it stays empty and every accessor falls back to
// its default.
var bootParamsBlob string

// BootcfgParse splits blob into KEY=VALUE lines, last occurrence of a
// key wins, malformed lines (no '=') are skipped. Must run before
// PITInit/FSInit if overrides are to take effect (spec.md §2 bring-up
// order still governs when each subsystem actually reads its value).
func BootcfgParse(blob string) {
	values := make(map[string]string)
	start := 0
	for i := 0; i <= len(blob); i++ {
		if i == len(blob) || blob[i] == '\n' {
			line := blob[start:i]
			start = i + 1
			if eq := indexByte(line, '='); eq > 0 {
				values[line[:eq]] = line[eq+1:]
			}
		}
	}
	bootcfg = bootParams{values: values}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Int returns the integer value of key, or def if it is absent or not
// a valid base-10 integer, matching env.Int's default-on-error shape.
func (b *bootParams) Int(key string, def int) int {
	v, ok := b.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Bool returns key's value interpreted as "1"/"true"/"yes" → true,
// anything else present → false, absent → def.
func (b *bootParams) Bool(key string, def bool) bool {
	v, ok := b.values[key]
	if !ok {
		return def
	}
	switch v {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// BootcfgPITFrequency resolves the PIT tick rate override, defaulting
// to spec.md §4.C's 100 Hz.
func BootcfgPITFrequency() uint32 {
	return uint32(bootcfg.Int("pit_hz", pitDefaultHz))
}

// BootcfgAutoLoadFS reports whether the kernel should attempt loadfs at
// boot in addition to FSInit's own disk-or-seed logic. Defaults to
// false: FSInit already loads a saved image when one exists, this flag
// is for forcing a reload over the seeded demo tree on a disk that
// FSInit's own check considered absent for some other reason.
func BootcfgAutoLoadFS() bool {
	return bootcfg.Bool("autoload_fs", false)
}

// BootcfgAutosaveIntervalSeconds resolves the shell's idle-autosave
// period, defaulting to spec.md §4.H's 60 seconds.
func BootcfgAutosaveIntervalSeconds() uint64 {
	return uint64(bootcfg.Int("autosave_seconds", shellAutosaveIntervalSeconds))
}
