package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// commands is the surface the REPL drives. *App implements it.
type commands interface {
	loggedIn() bool
	status() string
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Refresh(ctx context.Context) error
	Staff(ctx context.Context, args []string) error
	Branch(ctx context.Context) error
	Assign(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Commands: login, help, exit"
	helpLoggedIn  = "Commands: whoami, refresh, staff [search], branch, assign <nip> <product>=<amount>..., logout, help, exit"
)

// runREPL reads commands until EOF, "exit" or ctx ends. Command errors are
// printed and the loop continues.
func runREPL(ctx context.Context, c commands, in *bufio.Reader, t *terminal) {
	for ctx.Err() == nil {
		t.Printf("%s> ", c.status())

		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			t.Println()
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			if c.loggedIn() {
				t.Println(helpLoggedIn)
			} else {
				t.Println(helpLoggedOut)
			}
		case "login":
			cmdErr = c.Login(ctx)
		case "exit", "quit":
			t.Println("Bye!")
			return
		case "logout", "whoami", "refresh", "staff", "branch", "assign":
			if !c.loggedIn() {
				t.Println("Not logged in. Type 'login' first.")
				continue
			}
			cmdErr = dispatch(ctx, c, cmd, args)
		default:
			t.Println("Unknown command:", cmd)
		}

		if cmdErr != nil {
			t.Println("Error:", cmdErr)
		}
	}
}

func dispatch(ctx context.Context, c commands, cmd string, args []string) error {
	switch cmd {
	case "logout":
		return c.Logout(ctx)
	case "whoami":
		return c.Whoami(ctx)
	case "refresh":
		return c.Refresh(ctx)
	case "staff":
		return c.Staff(ctx, args)
	case "branch":
		return c.Branch(ctx)
	default:
		return c.Assign(ctx, args)
	}
}
