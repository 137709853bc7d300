// Command bars-dump reads a framed configuration container from
// stdin and pretty-prints the decoded Config, mirroring the original
// project's dump-config tool.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/smilemakc/bars/internal/codec"
)

func main() {
	flag.Parse()

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read stdin:", err)
		os.Exit(1)
	}

	cfg, err := codec.DecodeConfig(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "decode config:", err)
		os.Exit(1)
	}

	fmt.Printf("%+v\n", cfg)
}
