//go:build !windows

package minecraft

import "syscall"

var refusedErrnos = []syscall.Errno{syscall.ECONNREFUSED}
