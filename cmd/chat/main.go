// Command chat 在终端中与助手进行对话，回复逻辑与网站挂件一致。
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"portfolio-go/internal/config"
	"portfolio-go/internal/responder"
	"portfolio-go/pkg/log"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "chat with the portfolio assistant in the terminal",
		Long: `Start an interactive session with the portfolio assistant.

Empty lines are ignored. The session ends on a farewell such as "bye", or on EOF.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			log.Init("warn", "console", "")
			defer log.Sync()

			return run(responder.New(cfg.Portfolio.Profile), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "./configs/config.yaml", "path to the config file")
	return cmd
}

// run 逐行读取输入并打印回复，遇到告别语或 EOF 时结束。
func run(r *responder.Responder, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "assistant> %s\n", r.Welcome())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply := r.Match(line)
		fmt.Fprintf(out, "assistant> %s\n", reply.Text)
		if reply.Key == responder.KeyFarewell {
			return nil
		}
	}
}
