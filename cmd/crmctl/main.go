// Package main é o crmctl, a CLI de manutenção do CRM.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "crmctl:", err)
		os.Exit(1)
	}
}
