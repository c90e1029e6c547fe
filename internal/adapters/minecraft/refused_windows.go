//go:build windows

package minecraft

import "syscall"

// wsaeConnRefused is WSAECONNREFUSED, what connectex reports for a closed port.
const wsaeConnRefused syscall.Errno = 10061

var refusedErrnos = []syscall.Errno{wsaeConnRefused, syscall.ECONNREFUSED}
