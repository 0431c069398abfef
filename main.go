package main

import "upload-manager/cmd"

func main() {
	cmd.Execute()
}
