package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/config"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/crypto"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/hardening"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/masking"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/sandbox"
	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/version"
)

// NewEvalCommand creates the command evaluation command
func NewEvalCommand() *cobra.Command {
	var (
		mode         string
		workspace    string
		extraAllowed []string
		extraBlocked []string
		noNetwork    bool
		noPkgMgrs    bool
	)

	cmd := &cobra.Command{
		Use:   "eval [command line]",
		Short: "Evaluate a shell command against the sandbox policy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg := sandbox.Config{
				Mode:         sandbox.Mode(mode),
				WorkspaceDir: workspace,
				ExtraAllowed: extraAllowed,
				ExtraBlocked: extraBlocked,
			}
			if noNetwork {
				f := false
				cfg.AllowNetwork = &f
			}
			if noPkgMgrs {
				f := false
				cfg.AllowPackageManagers = &f
			}

			result := sandbox.Evaluate(strings.Join(args, " "), cfg)
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !result.Allowed {
				return fmt.Errorf("denied: %s", result.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "standard", "sandbox mode: disabled, strict, standard, permissive")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace directory for strict-mode path checks")
	cmd.Flags().StringSliceVar(&extraAllowed, "allow", nil, "extra allowed commands")
	cmd.Flags().StringSliceVar(&extraBlocked, "block", nil, "extra blocked commands")
	cmd.Flags().BoolVar(&noNetwork, "no-network", false, "deny network commands")
	cmd.Flags().BoolVar(&noPkgMgrs, "no-package-managers", false, "deny package manager commands")
	return cmd
}

// NewMaskCommand creates the credential masking command
func NewMaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mask [json]",
		Short: "Mask credential fields in a JSON document",
		Long:  "Reads a JSON document from the argument or stdin and prints it with every credential field masked.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			var raw []byte
			if len(args) > 0 {
				raw = []byte(args[0])
			} else {
				var err error
				raw, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			var doc any
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("input is not valid JSON: %w", err)
			}
			out, err := json.MarshalIndent(masking.Sensitive(doc), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	return cmd
}

// NewHashCommand creates the identity hashing command
func NewHashCommand() *cobra.Command {
	var useBcrypt bool

	cmd := &cobra.Command{
		Use:   "hash [identifier]",
		Short: "Hash a sender identifier or secret for configuration",
		Long: "Prints the SHA-256 hex digest of the identifier, suitable for " +
			"security.hardening.allowed_sender_hash. With --bcrypt, prints a " +
			"bcrypt hash for secret storage instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if useBcrypt {
				hash, err := crypto.HashSecret(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), crypto.Sha256Hex(args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&useBcrypt, "bcrypt", false, "produce a bcrypt hash for secret storage")
	return cmd
}

// NewCheckCommand creates the configuration check command
func NewCheckCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and show the resulting guard posture",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.LoadWithPath(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			h := cfg.Security.Hardening
			if h.AllowedSenderHash != "" && !crypto.ValidSha256Hex(h.AllowedSenderHash) {
				return fmt.Errorf("allowed_sender_hash is not a valid SHA-256 hex digest")
			}
			posture := map[string]any{
				"hardeningEnabled": hardening.IsEnabled(h),
				"singleUser":       h.AllowedSenderHash != "",
				"sandboxMode":      cfg.Security.Sandbox.Mode,
				"networkAllowlist": len(h.Network.AllowedDomains),
				"ratelimitRedis":   cfg.Security.RateLimit.RedisAddr != "",
				"config":           masking.Sensitive(cfg.Viper.AllSettings()),
			}

			out, err := json.MarshalIndent(posture, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				out, err := version.GetVersionInfo().JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo().String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
