package main

import (
	"fmt"
	"log"
	"os"

	"dataviewer/pkg/ui"
)

func main() {
	out := "dataviewer.png"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	if err := ui.GenerateIcon(out); err != nil {
		log.Fatal("Failed to generate icon:", err)
	}
	fmt.Println("Icon generated successfully:", out)
}
