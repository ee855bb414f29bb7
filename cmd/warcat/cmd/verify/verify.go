/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package verify

import (
	"github.com/nlnwa/warcat/cmd/warcat/cmd/internal/iterflags"
	"github.com/nlnwa/warcat/tool"
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	c := &iterflags.Conf{}
	cmd := &cobra.Command{
		Use:   "verify <file>...",
		Short: "Verify digests and validate conformance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeOut, err := c.ToolConfig()
			if err != nil {
				return err
			}
			defer func() { _ = closeOut() }()
			return tool.Verify(cfg, args)
		},
	}
	c.AddFlags(cmd)
	return cmd
}
