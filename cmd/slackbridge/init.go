package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/hexastack/slackbridge/pkg/app"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("output")
			if path == "" {
				path = app.DefaultConfigPath()
			}
			return runInitWizard(path)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Where to write the configuration file")
	return cmd
}

func runInitWizard(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	var (
		mode          = "webhook"
		botToken      string
		appToken      string
		signingSecret string
		engineURL     string
		bind          = "127.0.0.1:8080"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Delivery mode").
				Description("How should Slack deliver events?").
				Options(
					huh.NewOption("Webhook (public HTTPS endpoint)", "webhook"),
					huh.NewOption("Socket Mode (outbound WebSocket)", "socket"),
				).
				Value(&mode),
			huh.NewInput().
				Title("Bot token").
				Description("Starts with xoxb-").
				EchoMode(huh.EchoModePassword).
				Validate(prefixValidator("xoxb-")).
				Value(&botToken),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Signing secret").
				Description("Settings → Basic Information → Signing Secret").
				EchoMode(huh.EchoModePassword).
				Value(&signingSecret),
		).WithHideFunc(func() bool { return mode != "webhook" }),
		huh.NewGroup(
			huh.NewInput().
				Title("App-level token").
				Description("Starts with xapp-, needs the connections:write scope").
				EchoMode(huh.EchoModePassword).
				Validate(prefixValidator("xapp-")).
				Value(&appToken),
		).WithHideFunc(func() bool { return mode != "socket" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Bot engine URL").
				Description("Where normalized events are POSTed (leave empty to only log them)").
				Value(&engineURL),
			huh.NewInput().
				Title("Gateway bind address").
				Value(&bind),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	content := renderConfig(mode, botToken, appToken, signingSecret, engineURL, bind)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	fmt.Println("Start the bridge with: slackbridge start")
	return nil
}

func prefixValidator(prefix string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New("required")
		}
		if !strings.HasPrefix(s, prefix) {
			return fmt.Errorf("must start with %s", prefix)
		}
		return nil
	}
}

func renderConfig(mode, botToken, appToken, signingSecret, engineURL, bind string) string {
	var b strings.Builder

	b.WriteString("version: \"1\"\n\nmodules:\n")

	b.WriteString("  channel.slack:\n")
	fmt.Fprintf(&b, "    mode: %s\n", mode)
	fmt.Fprintf(&b, "    bot_token: %q\n", botToken)
	if mode == "webhook" {
		fmt.Fprintf(&b, "    signing_secret: %q\n", signingSecret)
	} else {
		fmt.Fprintf(&b, "    app_token: %q\n", appToken)
	}

	b.WriteString("\n  gateway.http:\n")
	fmt.Fprintf(&b, "    bind: %q\n", bind)

	b.WriteString("\n  attachment.sqlite: {}\n")

	if engineURL != "" {
		b.WriteString("\n  pipeline.http:\n")
		fmt.Fprintf(&b, "    url: %q\n", engineURL)
	}

	return b.String()
}
