package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/semrel-go/semrel"
)

// Version will be set by build process
var Version = "dev"

type CLI struct {
	Repo            string `short:"r" help:"Repository path (default: current directory)"`
	Config          string `short:"c" help:"Path to a TOML configuration file"`
	Prerelease      bool   `help:"Compute a prerelease version"`
	PrereleaseToken string `help:"Prerelease token override (default: from branch configuration)"`
	BuildMetadata   string `help:"Build metadata to append to the version"`
	Strict          bool   `help:"Fail when no version bump is warranted"`
	AsTag           bool   `help:"Print the version formatted as a tag"`
	JSON            bool   `short:"j" help:"Output as JSON"`
	Debug           bool   `help:"Enable debug logging"`

	PublishTo   string `help:"GitHub repository to publish the release to (owner/name)" name:"publish-to"`
	GitHubToken string `help:"GitHub access token for publishing" env:"GITHUB_TOKEN"`

	ShowVersion bool `help:"Show version information" name:"version"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("semrel"),
		kong.Description("Calculate the next semantic version from conventional commit history"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	if c.ShowVersion {
		return c.showVersion()
	}

	if c.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	return c.calculateVersion()
}

func (c *CLI) showVersion() error {
	versionInfo := map[string]string{
		"version": Version,
		"name":    "semrel",
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(versionInfo)
	}

	fmt.Printf("semrel version %s\n", Version)
	return nil
}

func (c *CLI) calculateVersion() error {
	repoPath := c.Repo
	if repoPath == "" {
		var err error
		repoPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}

	config := semrel.DefaultConfig()
	if c.Config != "" {
		var err error
		config, err = semrel.LoadConfig(c.Config)
		if err != nil {
			return err
		}
	}

	project, err := semrel.OpenProject(repoPath, config)
	if err != nil {
		return err
	}

	next, err := project.CalculateNextVersion(semrel.CalculateOptions{
		Prerelease:      c.Prerelease,
		PrereleaseToken: c.PrereleaseToken,
		BuildMetadata:   c.BuildMetadata,
		Strict:          c.Strict,
	})
	if err != nil {
		return err
	}

	tag := project.Translator().TagFor(next)
	if c.PublishTo != "" {
		if err := c.publish(tag, next.IsPrerelease()); err != nil {
			return err
		}
	}

	output := next.String()
	if c.AsTag {
		output = tag
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"version": next.String(),
			"tag":     tag,
		})
	}

	fmt.Println(output)
	return nil
}

func (c *CLI) publish(tag string, prerelease bool) error {
	if c.GitHubToken == "" {
		return fmt.Errorf("publishing requires a GitHub token")
	}

	owner, name, ok := splitRepoSlug(c.PublishTo)
	if !ok {
		return fmt.Errorf("invalid repository slug %q, expected owner/name", c.PublishTo)
	}

	ctx := context.Background()
	client := semrel.NewGitHubClient(ctx, owner, name, c.GitHubToken)
	url, err := client.CreateRelease(ctx, tag, tag, "", prerelease)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Published release: %s\n", url)
	return nil
}

func splitRepoSlug(slug string) (owner, name string, ok bool) {
	for i := 0; i < len(slug); i++ {
		if slug[i] == '/' {
			owner, name = slug[:i], slug[i+1:]
			return owner, name, owner != "" && name != ""
		}
	}
	return "", "", false
}
