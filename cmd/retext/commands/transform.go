// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/retext/pkg/config"
	"github.com/walteh/retext/pkg/diff"
	"github.com/walteh/retext/pkg/log"
	"github.com/walteh/retext/pkg/provider"
	"gitlab.com/tozd/go/errors"
)

// NewTransformCmd builds the one-shot pipeline command: read text from stdin,
// transform it through the configured provider, preview the diff, and print
// the accepted result to stdout.
func NewTransformCmd(configFile *string) *cobra.Command {
	var (
		operation    string
		instructions string
		view         string
		text         string
		yes          bool
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform text from stdin and preview the diff",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx, *configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			subject := text
			fromStdin := false
			if subject == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Errorf("reading stdin: %w", err)
				}
				subject = strings.TrimRight(string(data), "\n")
				fromStdin = true
			}
			if subject == "" {
				return errors.Errorf("no input text")
			}

			prov, err := provider.New(ctx, cfg.Provider.Name, provider.Settings{
				BaseURL: cfg.Provider.BaseURL,
				APIKey:  cfg.Provider.ResolveAPIKey(),
				Model:   cfg.Provider.Model,
			})
			if err != nil {
				return err
			}

			userLogger := log.New(os.Stderr, zerolog.InfoLevel)
			userLogger.Header(fmt.Sprintf("%s via %s", operation, prov.Name()))

			resp, err := prov.Transform(ctx, provider.Request{
				Operation:    operation,
				Text:         subject,
				Instructions: instructions,
			})
			if err != nil {
				return errors.Errorf("transforming text: %w", err)
			}

			var segments []diff.Segment
			if strings.Contains(subject, "\n") || strings.Contains(resp.Text, "\n") {
				segments = diff.Lines(subject, resp.Text)
			} else {
				segments = diff.Inline(subject, resp.Text)
			}
			if err := renderPreview(os.Stderr, segments, view); err != nil {
				return err
			}

			// When stdin carried the subject text there is no terminal left to
			// answer a prompt on.
			if !yes && fromStdin && !isatty.IsTerminal(os.Stdin.Fd()) {
				userLogger.Info("non-interactive input, applying without confirmation")
				yes = true
			}
			if !yes {
				accepted, err := pterm.DefaultInteractiveConfirm.
					WithDefaultValue(true).
					Show("Apply this transformation?")
				if err != nil {
					return errors.Errorf("reading confirmation: %w", err)
				}
				if !accepted {
					userLogger.Warning("transformation rejected")
					return nil
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			userLogger.Success("transformation applied")
			return nil
		},
	}

	cmd.Flags().StringVarP(&operation, "operation", "o", "rewrite", "operation identifier (rewrite, summarize, restructure)")
	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "free-form instructions for the provider")
	cmd.Flags().StringVar(&view, "view", "unified", "preview layout (unified, side-by-side, inline)")
	cmd.Flags().StringVar(&text, "text", "", "subject text (defaults to stdin)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
