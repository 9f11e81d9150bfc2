package main

import "github.com/idixon/hyp3-lib/internal/logging"

func main() {
	logging.Setup("info", "console")
	Execute()
}
