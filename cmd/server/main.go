package main

import (
	"os"

	"kodechat/internal/app"
)

func main() {
	os.Exit(app.Run())
}
