package service

import "strings"

// buildCommandRules are checked in order; the first matching prefix wins.
var buildCommandRules = []struct {
	prefix  string
	command string
}{
	{"node", "npm install && npm run build"},
	{"python", "pip install -r requirements.txt && python -m build"},
	{"deno", "deno cache && deno run --allow-net ./mod.ts"},
	{"docker", "docker build -t app ."},
}

const fallbackBuildCommand = "npm run build"

// DefaultBuildCommand returns the build command suggested for a container image.
func DefaultBuildCommand(containerImage string) string {
	for _, rule := range buildCommandRules {
		if strings.HasPrefix(containerImage, rule.prefix) {
			return rule.command
		}
	}
	return fallbackBuildCommand
}
