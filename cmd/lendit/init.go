package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/lendit/internal/config"
	"gopkg.in/yaml.v3"
)

const mcpServerName = "lendit"

// lenditMCPEntry launches this binary's stdio MCP server.
var lenditMCPEntry = map[string]any{
	"type":    "stdio",
	"command": "lendit",
	"args":    []string{"mcp"},
}

// initStep reports what happened to one file written by init.
type initStep struct {
	file   string
	action string // created, updated or skipped
	note   string
}

// runInit writes the effective configuration to lendit.yml and registers
// the MCP server in .mcp.json inside dir.
func runInit(dir string, cfg *config.ProjectConfig, args []string, term terminal) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(term.err)
	force := fs.Bool("force", false, "overwrite existing files and entries")
	if err := fs.Parse(args); err != nil {
		return err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return err
	}

	for _, write := range []func(string, bool) (initStep, error){
		func(d string, force bool) (initStep, error) { return writeConfigFile(d, cfg, force) },
		registerMCPServer,
	} {
		step, err := write(abs, *force)
		if err != nil {
			return err
		}
		fmt.Fprintf(term.out, "  %s %s%s\n", step.action, step.file, step.note)
	}

	fmt.Fprintln(term.out, "\nSetup complete.")
	return nil
}

func writeConfigFile(dir string, cfg *config.ProjectConfig, force bool) (initStep, error) {
	step := initStep{file: "lendit.yml", action: "created"}
	path := filepath.Join(dir, step.file)
	if _, err := os.Stat(path); err == nil {
		if !force {
			step.action, step.note = "skipped", " (exists, use -force to overwrite)"
			return step, nil
		}
		step.action = "updated"
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return step, fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return step, fmt.Errorf("writing %s: %w", path, err)
	}
	return step, nil
}

// registerMCPServer adds the lendit entry under mcpServers in .mcp.json,
// keeping every other server and top-level key as found.
func registerMCPServer(dir string, force bool) (initStep, error) {
	step := initStep{file: ".mcp.json", action: "created"}
	path := filepath.Join(dir, step.file)

	doc := map[string]json.RawMessage{}
	servers := map[string]json.RawMessage{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		step.action = "updated"
		if err := json.Unmarshal(data, &doc); err != nil {
			return step, fmt.Errorf("parsing %s: %w", path, err)
		}
		if raw, ok := doc["mcpServers"]; ok {
			if err := json.Unmarshal(raw, &servers); err != nil {
				return step, fmt.Errorf("parsing %s mcpServers: %w", path, err)
			}
		}
	case !errors.Is(err, os.ErrNotExist):
		return step, fmt.Errorf("reading %s: %w", path, err)
	}

	if _, exists := servers[mcpServerName]; exists && !force {
		step.action, step.note = "skipped", " lendit entry (exists, use -force to overwrite)"
		return step, nil
	}

	entry, err := json.Marshal(lenditMCPEntry)
	if err != nil {
		return step, err
	}
	servers[mcpServerName] = entry
	if doc["mcpServers"], err = json.Marshal(servers); err != nil {
		return step, err
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return step, fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return step, fmt.Errorf("writing %s: %w", path, err)
	}
	step.note = " with lendit MCP server"
	return step, nil
}
