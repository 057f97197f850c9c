// Console logger wiring: the kernel's one klog sink is the VGA terminal
// itself (Terminal implements io.Writer). See internal/klog for the
// zap-shaped logger this wraps.
package main

import "github.com/xyproto/longmode/internal/klog"

// Klog is the kernel-wide console logger, initialized once terminal.go's
// TerminalInit has run (spec.md §2 bring-up order: Terminal first).
var Klog *klog.Logger

func klogInit() {
	Klog = klog.New(&term, klog.InfoLevel)
}

func klogF(key string, value any) klog.Field {
	return klog.F(key, value)
}
