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
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/retext/pkg/clipboard"
	"github.com/walteh/retext/pkg/config"
	"github.com/walteh/retext/pkg/diff"
	"github.com/walteh/retext/pkg/log"
	"github.com/walteh/retext/pkg/provider"
	"github.com/walteh/retext/pkg/replace"
	"github.com/walteh/retext/pkg/selection"
	"github.com/walteh/retext/pkg/uiprobe"
	"github.com/walteh/retext/pkg/workflow"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// NewRunCmd builds the monitoring pipeline command: poll selections, request
// transformations, preview, and commit.
func NewRunCmd(configFile *string) *cobra.Command {
	var (
		operation    string
		instructions string
		modeName     string
		view         string
		autoAccept   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Monitor selections and apply transformations in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cfg, err := config.Load(ctx, *configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			mode := replace.Mode(modeName)
			if !mode.Valid() {
				return errors.Errorf("invalid replacement mode %q", modeName)
			}

			factory := uiprobe.Get(cfg.Monitor.Backend)
			if factory == nil {
				return errors.Errorf("no introspection backend registered with name %q", cfg.Monitor.Backend)
			}
			intro, err := factory(ctx)
			if err != nil {
				return errors.Errorf("creating introspection backend: %w", err)
			}

			// The emulated backend carries its own in-process clipboard;
			// platform backends share the system clipboard.
			var clip clipboard.Clipboard = clipboard.NewSystem()
			if c, ok := intro.(interface{ Clipboard() clipboard.Clipboard }); ok {
				clip = c.Clipboard()
			}
			synth, _ := intro.(uiprobe.Synthesizer)

			monitor, err := selection.New(selection.Options{
				Introspector: intro,
				Synthesizer:  synth,
				Clipboard:    clip,
				Interval:     cfg.Monitor.PollInterval(),
				MinLength:    cfg.Monitor.MinLength,
				IgnoreApps:   cfg.Monitor.IgnoreApps,
			})
			if err != nil {
				return errors.Errorf("creating selection monitor: %w", err)
			}

			engine := replace.New(replace.Options{
				History:      replace.NewHistory(cfg.Replace.UndoCapacity),
				Clipboard:    clip,
				Synthesizer:  synth,
				RestoreDelay: cfg.Replace.RestoreDelay(),
			})

			prov, err := provider.New(ctx, cfg.Provider.Name, provider.Settings{
				BaseURL: cfg.Provider.BaseURL,
				APIKey:  cfg.Provider.ResolveAPIKey(),
				Model:   cfg.Provider.Model,
			})
			if err != nil {
				return err
			}

			userLogger := log.New(os.Stderr, zerolog.InfoLevel)
			userLogger.Header("monitoring selections (" + cfg.Monitor.Backend + " backend)")

			var controller *workflow.Controller
			controller, err = workflow.New(workflow.Options{
				Events:       monitor.Events(),
				Provider:     prov,
				Engine:       engine,
				Introspector: intro,
				Hooks: workflow.Hooks{
					OnSelection: func(snap *selection.Snapshot) {
						userLogger.LogSelection(ctx, snap.App.Name, len([]rune(snap.Text)))
						if err := controller.Choose(ctx, operation, instructions); err != nil {
							userLogger.Errorf("starting operation: %v", err)
						}
					},
					OnPreview: func(segments []diff.Segment) {
						_ = renderPreview(os.Stderr, segments, view)
						if autoAccept {
							if err := controller.Accept(ctx, mode); err != nil {
								userLogger.Errorf("committing: %v", err)
							}
						} else {
							userLogger.Info("preview ready; accept or reject from the panel")
						}
					},
					OnCommitted: func(result *replace.Result) {
						userLogger.LogReplaceOperation(ctx, log.ReplaceOperation{
							App:      result.Record.Target.App.Name,
							Mode:     string(mode),
							Strategy: result.Strategy,
							Chars:    len([]rune(result.Record.Replacement)),
						})
					},
					OnError: func(err error, message string) {
						userLogger.Error(message)
					},
					OnPermissionRequired: func() {
						userLogger.Warning("introspection access denied; grant it and restart")
					},
				},
			})
			if err != nil {
				return errors.Errorf("creating workflow controller: %w", err)
			}

			if err := monitor.Start(ctx); err != nil {
				return errors.Errorf("starting selection monitor: %w", err)
			}
			defer monitor.Stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return controller.Run(gctx)
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return errors.Errorf("running pipeline: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&operation, "operation", "o", "rewrite", "operation identifier (rewrite, summarize, restructure)")
	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "free-form instructions for the provider")
	cmd.Flags().StringVarP(&modeName, "mode", "m", string(replace.ModeReplaceSelection), "replacement mode")
	cmd.Flags().StringVar(&view, "view", "unified", "preview layout (unified, side-by-side, inline)")
	cmd.Flags().BoolVar(&autoAccept, "auto-accept", false, "commit previews without confirmation")

	return cmd
}
