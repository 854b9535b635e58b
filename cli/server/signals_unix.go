//go:build !windows

package server

import "syscall"

const (
	sighup = syscall.SIGHUP
)
