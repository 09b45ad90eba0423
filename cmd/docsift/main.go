package main

import "github.com/mvp-joe/docsift/internal/cli"

func main() {
	cli.Execute()
}
