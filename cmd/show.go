/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/notargets/gomorse/logging"
	"github.com/notargets/gomorse/pipeline"
	"github.com/notargets/gomorse/store"
)

func init() {
	rootCmd.AddCommand(newShowCmd())
}

func newShowCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "show [key]",
		Short: "List stored reports or print one",
		Long: `
Without a key, lists the report keys in a result store. With a key, prints the
stored report.

gomorse show --store dir [key]`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var (
				dir, prefix string
				log         *logging.Logger
			)
			dir, _ = cmd.Flags().GetString("store")
			prefix, _ = cmd.Flags().GetString("prefix")
			if dir == "" {
				return errors.New("must supply a store directory (--store)")
			}
			if log, err = newLogger(cmd.ErrOrStderr()); err != nil {
				return
			}
			var key string
			if len(args) == 1 {
				key = args[0]
			}
			return Show(dir, key, prefix, cmd.OutOrStdout(), log)
		},
	}
	c.Flags().String("store", "", "directory of the result store")
	c.Flags().String("prefix", "", "only list keys with this prefix")
	return c
}

// Show prints the report stored under key, or the keys matching prefix when key
// is empty.
func Show(dir, key, prefix string, out io.Writer, log *logging.Logger) (err error) {
	var s *store.Store
	if s, err = store.Open(store.Options{Dir: dir, ReadOnly: true, Logger: log}); err != nil {
		return
	}
	defer s.Close()
	if key == "" {
		var keys []string
		if keys, err = s.Keys(prefix); err != nil {
			return
		}
		for _, k := range keys {
			fmt.Fprintln(out, k)
		}
		return
	}
	var r pipeline.Report
	if err = s.Get(key, &r); err != nil {
		return
	}
	r.Print(out)
	return
}
