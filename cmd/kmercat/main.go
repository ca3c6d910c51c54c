// cmd/kmercat/main.go
package main

import (
	"kmerio/internal/app"
	"kmerio/internal/appshell"
)

func main() { appshell.Main(app.Run) }
