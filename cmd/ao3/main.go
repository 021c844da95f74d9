package main

import (
	"ao3-scraper/cmd/ao3/commands"
	"ao3-scraper/lib/util/serviceutil"
)

func main() {
	err := commands.ExecuteContext(serviceutil.SignalContext())
	if err != nil {
		serviceutil.Fatal("ao3 failed", err)
	}
}
