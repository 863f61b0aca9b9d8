// Package main is a stand-in for msbuild in executor tests. Flags control what
// is written to stdout and stderr and the exit code.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/text/encoding/japanese"
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" {
			fmt.Fprintf(os.Stdout, "MSBuild version %s for .NET Framework\n", os.Getenv("TESTHELPER_VERSION"))
			os.Exit(0)
		}
	}

	stdout := flag.String("stdout", "", "content to write to stdout")
	stderr := flag.String("stderr", "", "content to write to stderr")
	sjis := flag.Bool("sjis", false, "encode stdout as Shift_JIS")
	pwd := flag.Bool("pwd", false, "print the working directory")
	exitCode := flag.Int("exit", 0, "exit code to return")
	flag.Parse()

	if *pwd {
		wd, _ := os.Getwd()
		fmt.Fprintln(os.Stdout, wd)
	}
	if *stdout != "" {
		out := []byte(*stdout)
		if *sjis {
			encoded, err := japanese.ShiftJIS.NewEncoder().Bytes(out)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			out = encoded
		}
		os.Stdout.Write(out)
	}
	if *stderr != "" {
		fmt.Fprint(os.Stderr, *stderr)
	}
	os.Exit(*exitCode)
}
