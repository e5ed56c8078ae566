// Package agentcli implements the vulcand command line interface.
package agentcli

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vulcankb/vulcand/pkg/agent"
	"github.com/vulcankb/vulcand/vulcan"
)

func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	dir, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	cmd := NewRootCmd(filepath.Join(dir, "vulcand"))
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

type agentProvider func() *agent.Agent

func NewRootCmd(configDir string) *cobra.Command {
	cfg := agent.Config{
		DataDir:      filepath.Join(configDir, "data"),
		DeviceConfig: filepath.Join(configDir, "vulcand.yml"),
	}
	rootCmd := &cobra.Command{
		Use:   "vulcand",
		Short: "Userspace special-key driver for Roccat Vulcan keyboards",
		Long: `vulcand decodes the re-purposed raw reports Roccat Vulcan keyboards emit
for their media, profile and FX keys once an LED initialization sequence has
been sent, and delivers them to the system as regular key events through a
virtual input device.`,
	}
	var a *agent.Agent
	provider := func() *agent.Agent {
		return a
	}
	rootCmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&cfg.DeviceConfig, "config", cfg.DeviceConfig, "device config file")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "decode" {
			// Offline command, no agent needed.
			return nil
		}
		var err error
		a, err = agent.NewAgent(cfg)
		return err
	}
	rootCmd.AddCommand(NewRun(provider))
	rootCmd.AddCommand(NewListDevices(provider))
	rootCmd.AddCommand(NewDecode())
	return rootCmd
}

func NewRun(agent agentProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the vulcand agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return agent().Run(cmd.Context())
		},
	}
}

func NewListDevices(agent agentProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list-devices",
		Short: "List supported keyboards seen by the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := agent().HID().ListDevices()
			if err != nil {
				return err
			}
			jsonB, err := json.MarshalIndent(devices, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonB))
			return nil
		},
	}
}

func NewDecode() *cobra.Command {
	var variantName string
	cmd := &cobra.Command{
		Use:   "decode <hex-report>",
		Short: "Decode a raw report against a sequence table",
		Long:  `Decode a hex-encoded raw report (e.g. 03000b2100) against the sequence table of the chosen firmware generation.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid hex report: %w", err)
			}
			var variant vulcan.TableVariant
			switch variantName {
			case "profile":
				variant = vulcan.VariantProfileKeys
			case "fx":
				variant = vulcan.VariantFXKeys
			default:
				return fmt.Errorf("unknown table variant %q (want profile or fx)", variantName)
			}
			entry, ok := vulcan.TableFor(variant).Decode(data)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not handled")
				return nil
			}
			transition := "release"
			if entry.Press {
				transition = "press"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", entry.Usage, transition)
			return nil
		},
	}
	cmd.Flags().StringVar(&variantName, "variant", "profile", "table variant (profile or fx)")
	return cmd
}
