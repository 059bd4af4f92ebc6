/*
 * Copyright 2024 Raamsri Kumar <raam@tinkershack.in> and The StrataSTOR Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stratastor/eraser/config"
	"github.com/stratastor/eraser/internal/wiring"
	drivehealth "github.com/stratastor/eraser/pkg/drive/health"
	"github.com/stratastor/eraser/pkg/errors"
)

var (
	selfTest  bool
	extensive bool
	monitor   bool
)

func NewHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health <device|all>",
		Short: "Report SMART health for one or all drives",
		Args:  cobra.ExactArgs(1),
		RunE:  runHealth,
	}

	cmd.Flags().BoolVar(&selfTest, "self-test", false, "Dispatch a SMART self-test before reporting")
	cmd.Flags().BoolVar(&extensive, "extensive", false, "Run an extensive self-test instead of a quick one (requires --self-test)")
	cmd.Flags().BoolVar(&monitor, "monitor", false, "Poll continuously until interrupted")
	return cmd
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	l := wiring.NewLogger(cfg, "health")
	stack := wiring.Build(cfg, l)
	ctx := context.Background()

	paths, err := resolveDevices(ctx, stack, args[0])
	if err != nil {
		return err
	}

	if selfTest {
		for _, p := range paths {
			if err := stack.HealthMonitor.StartSelfTest(ctx, p, extensive); err != nil {
				fmt.Printf("%s: failed to start self-test: %v\n", p, err)
				os.Exit(errors.ExitCode(err))
			}
			fmt.Printf("%s: self-test dispatched\n", p)
		}
		return nil
	}

	if monitor {
		stack.HealthMonitor.Watch(ctx, paths, 30*time.Second, printStatus)
		return nil
	}

	for _, s := range stack.HealthMonitor.CheckAll(ctx, paths) {
		printStatus(*s)
	}
	return nil
}

func resolveDevices(ctx context.Context, stack *wiring.Stack, arg string) ([]string, error) {
	if arg == "all" {
		drives, err := stack.Detector.DiscoverAll(ctx)
		if err != nil {
			return nil, err
		}
		paths := make([]string, 0, len(drives))
		for _, d := range drives {
			paths = append(paths, d.Path)
		}
		return paths, nil
	}
	if _, err := stack.Detector.Detect(ctx, arg); err != nil {
		return nil, err
	}
	return []string{arg}, nil
}

func printStatus(s drivehealth.Status) {
	fmt.Printf("%s\t%-8s\t%3d C\t%s\n", s.Path, s.Level, s.TemperatureC, s.Reason)
}
