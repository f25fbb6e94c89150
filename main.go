package main

import (
	"freight-billing-backend/cmd"
)

func main() {
	cmd.Execute()
}
