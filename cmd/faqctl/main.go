package main

import "faq-bot/cmd/faqctl/cli"

func main() {
	cli.Execute()
}
