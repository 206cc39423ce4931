package main

import "github.com/frahmantamala/salary-advance/cmd"

func main() {
	cmd.Execute()
}
