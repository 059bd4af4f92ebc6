/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package status

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratastor/eraser/config"
	"github.com/stratastor/eraser/internal/constants"
	"github.com/stratastor/eraser/pkg/health"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the eraser API server status",
		Run: func(cmd *cobra.Command, args []string) {
			pidFile := constants.EraserPIDFilePath
			if _, err := os.Stat(pidFile); err != nil {
				fmt.Println("eraser server is not running")
				return
			}

			checker := health.NewHealthChecker(config.GetConfig())
			if _, err := checker.CheckHealth(); err != nil {
				fmt.Printf("eraser server process is running but not answering: %v\n", err)
				return
			}
			fmt.Println("eraser server is running")
		},
	}
}
