package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const serverName = "tsgraph"

// clientDef describes one MCP client config file tsgraph can register in.
type clientDef struct {
	DisplayName string
	Marker      string            // directory that must exist; "" = always
	ConfigPath  string            // relative to the working directory
	ServersKey  string            // "servers" (VS Code) or "mcpServers"
	ExtraFields map[string]string // e.g. "type": "stdio" for VS Code
}

// Replaceable for testing.
var statFunc = os.Stat

var clientRegistry = []clientDef{
	{
		DisplayName: "Project .mcp.json",
		ConfigPath:  ".mcp.json",
		ServersKey:  "mcpServers",
	},
	{
		DisplayName: "VS Code",
		Marker:      ".vscode",
		ConfigPath:  filepath.Join(".vscode", "mcp.json"),
		ServersKey:  "servers",
		ExtraFields: map[string]string{"type": "stdio"},
	},
	{
		DisplayName: "Cursor",
		Marker:      ".cursor",
		ConfigPath:  filepath.Join(".cursor", "mcp.json"),
		ServersKey:  "mcpServers",
	},
}

func detectClients() []clientDef {
	var found []clientDef
	for _, def := range clientRegistry {
		if def.Marker != "" {
			if _, err := statFunc(def.Marker); err != nil {
				continue
			}
		}
		found = append(found, def)
	}
	return found
}

func serverEntry(dir string, extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": serverName,
		"args":    []any{"--serve", "-d", dir},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds a tsgraph entry under serversKey to the JSON config
// in existing (which may be empty) and returns the new file contents.
// Returns nil, nil if tsgraph is already registered.
func mergeServerEntry(existing []byte, serversKey, dir string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}

	servers[serverName] = serverEntry(dir, extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// configureClient merges the entry into def's config file. Reports whether
// the file changed.
func configureClient(def clientDef, dir string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(def.ConfigPath), 0755); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}

	var existing []byte
	if data, err := os.ReadFile(def.ConfigPath); err == nil {
		existing = data
	}

	merged, err := mergeServerEntry(existing, def.ServersKey, dir, def.ExtraFields)
	if err != nil || merged == nil {
		return false, err
	}
	return true, os.WriteFile(def.ConfigPath, merged, 0644)
}

// runSetup registers "tsgraph --serve -d <dir>" with every detected client.
func runSetup(dir string, stdout, stderr io.Writer) int {
	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR reading directory: %s: %v\n", dir, err)
		return 1
	}

	failed := false
	for _, def := range detectClients() {
		changed, err := configureClient(def, abs)
		switch {
		case err != nil:
			fmt.Fprintf(stderr, "  ! %s: %v\n", def.DisplayName, err)
			failed = true
		case changed:
			fmt.Fprintf(stdout, "  + %s configured (%s)\n", def.DisplayName, def.ConfigPath)
		default:
			fmt.Fprintf(stdout, "  * %s already configured\n", def.DisplayName)
		}
	}

	if failed {
		return 1
	}
	return 0
}
