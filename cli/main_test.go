package main

import (
	"testing"
)

func TestCLIVersion(t *testing.T) {
	e := newExecutor(t, false)
	e.Run(t, "zkreg", "--version")
	e.checkNextLine(t, "^ZKReg")
	e.checkNextLine(t, "^Version:")
	e.checkNextLine(t, "^GoVersion:")
	e.checkEOF(t)
}

func TestCLIUnknownCommand(t *testing.T) {
	e := newExecutor(t, false)
	e.RunWithError(t, "zkreg", "registry", "version", "extra")
}
