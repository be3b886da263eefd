package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dusk-indust/lendit/internal/export"
)

func (a *app) runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(a.term.err)
	format := fs.String("format", "json", "output format: json or mermaid")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch *format {
	case "json":
		snap, err := export.BuildSnapshot(ctx, a.cat)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return snap.WriteJSON(a.term.out)
	case "mermaid":
		diagram, err := export.GenerateMermaid(ctx, a.cat)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		_, err = io.WriteString(a.term.out, diagram)
		return err
	default:
		return fmt.Errorf("unknown export format %q (want json or mermaid)", *format)
	}
}
