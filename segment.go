package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"furiganalyrics/ruby"
)

func segmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segment SURFACE READING [ALTERNATIVE...]",
		Short: "Show how a reading is placed over a word",
		Example: "  furiganalyrics segment 食べる たべる くう\n" +
			"  furiganalyrics segment テスト てすと",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			surface, reading := args[0], args[1]
			res := ruby.Segment(surface, reading)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "base:   %s\n", res.BaseMain)
			fmt.Fprintf(out, "suffix: %s\n", res.Suffix)
			if res.Annotated() {
				fmt.Fprintf(out, "ruby:   %s\n", res.RT)
			} else {
				fmt.Fprintln(out, "ruby:   (none)")
			}

			if len(args) > 2 {
				candidates := append([]string{reading}, args[2:]...)
				c := ruby.NormalizeAlternatives(surface, candidates, reading)
				opts := make([]string, len(c.Options))
				for i, o := range c.Options {
					if c.IsCurrent(o) {
						o = "*" + o
					}
					opts[i] = o
				}
				fmt.Fprintf(out, "choices: %s\n", strings.Join(opts, " "))
				if !c.Selectable() {
					fmt.Fprintln(out, "(single reading, no menu)")
				}
			}
			return nil
		},
	}
}
