package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/peterh/liner"
)

const (
	historyFile = ".hackvm_history"
	prompt      = "vm> "
	banner      = "Hack VM translator. Type VM commands, or :run, :asm, :symbols, :file <Name>, :reset, :quit."
)

func main() {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := newSession()
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, aurora.Red(err.Error()))
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			out, exit, err := s.command(line)
			if exit {
				return
			}
			report(out, err)
			continue
		}
		report(s.eval(line))
	}
}

func report(out string, err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, aurora.Red(err.Error()))
		return
	}
	if out != "" {
		fmt.Println(out)
	}
}
