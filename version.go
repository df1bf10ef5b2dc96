package main

import "github.com/fzft/go-redis-commands/cmd"

// Set with -ldflags "-X main.gitSHA1=...".
var (
	gitSHA1   string = "unknown"
	gitDirty  string = "unknown"
	buildID   string = ""
	buildDate string = ""
)

func buildInfo() cmd.BuildInfo {
	id := buildID
	if buildDate != "" {
		id += "-" + buildDate
	}
	return cmd.BuildInfo{
		GitSHA1:  gitSHA1,
		GitDirty: gitDirty,
		BuildID:  id,
	}
}
