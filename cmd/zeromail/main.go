package main

import "github.com/lu-zhengda/zeromail/internal/cli"

func main() {
	cli.Execute()
}
