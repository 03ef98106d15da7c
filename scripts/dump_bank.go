// Writes the built-in diabetes screening flow as a questionnaire bank file.
// Deployments that want to customize the flow start from this dump, point
// questionnaire.bank_path at the edited copy and let the file watcher pick
// up changes.
//
// Usage: go run scripts/dump_bank.go [output path]

package main

import (
	"log"
	"os"

	"glucogard_backend/internal/questionnaire"
)

func main() {
	out := "configs/questionnaire.yaml"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	flow := questionnaire.DefaultFlow()
	if err := flow.Check(questionnaire.DefaultRegistry()); err != nil {
		log.Fatalf("built-in flow failed its own check: %v", err)
	}

	data, err := questionnaire.DumpFlow(flow)
	if err != nil {
		log.Fatalf("failed to render flow: %v", err)
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		log.Fatalf("failed to write %s: %v", out, err)
	}
	log.Printf("wrote %d questions to %s", flow.Len(), out)
}
