package main

import (
	"fmt"
	"log/slog"

	"github.com/hexastack/slackbridge/pkg/app"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program adapts the application loop to the service manager lifecycle.
type program struct {
	cfgPath string
	errCh   chan error
}

func (p *program) Start(_ service.Service) error {
	p.errCh = make(chan error, 1)
	go func() {
		p.errCh <- app.Run(app.RunParams{
			ConfigPath: p.cfgPath,
			Version:    version,
			Commit:     commit,
			Date:       date,
			LogLevel:   slog.LevelInfo,
		})
	}()
	return nil
}

func (p *program) Stop(_ service.Service) error {
	// app.Run shuts down on SIGTERM, which the service manager sends
	// alongside this call. Nothing to tear down here.
	return nil
}

func newService(cfgPath string) (service.Service, *program, error) {
	prg := &program{cfgPath: cfgPath}
	args := []string{"service", "run"}
	if cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}
	svc, err := service.New(prg, &service.Config{
		Name:        "slackbridge",
		DisplayName: "slackbridge",
		Description: "Bridges Slack events to a bot engine",
		Arguments:   args,
	})
	if err != nil {
		return nil, nil, err
	}
	return svc, prg, nil
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage slackbridge as a system service",
	}
	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")

	control := func(action string) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, _ []string) error {
			cfgPath, _ := c.Flags().GetString("config")
			svc, _, err := newService(cfgPath)
			if err != nil {
				return err
			}
			if err := service.Control(svc, action); err != nil {
				return fmt.Errorf("service %s: %w", action, err)
			}
			fmt.Printf("Service %s: done\n", action)
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "install",
			Short: "Install slackbridge as a system service",
			RunE:  control("install"),
		},
		&cobra.Command{
			Use:   "uninstall",
			Short: "Remove the system service",
			RunE:  control("uninstall"),
		},
		&cobra.Command{
			Use:   "start",
			Short: "Start the installed service",
			RunE:  control("start"),
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the installed service",
			RunE:  control("stop"),
		},
		&cobra.Command{
			Use:   "restart",
			Short: "Restart the installed service",
			RunE:  control("restart"),
		},
		&cobra.Command{
			Use:   "run",
			Short: "Run under the service manager (used by the installed unit)",
			RunE: func(c *cobra.Command, _ []string) error {
				cfgPath, _ := c.Flags().GetString("config")
				svc, prg, err := newService(cfgPath)
				if err != nil {
					return err
				}
				if err := svc.Run(); err != nil {
					return err
				}
				select {
				case err := <-prg.errCh:
					return err
				default:
					return nil
				}
			},
		},
	)
	return cmd
}
