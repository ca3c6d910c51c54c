// cmd/kmerdump/main.go
package main

import (
	"kmerio/internal/appshell"
	"kmerio/internal/dumpapp"
)

func main() { appshell.Main(dumpapp.Run) }
