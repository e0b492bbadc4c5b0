package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs. The real App type
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	BrandSet(ctx context.Context, args []string) error
	BrandShow(ctx context.Context) error
	DesignAdd(ctx context.Context, args []string) error
	DesignRemove(ctx context.Context, args []string) error
	DraftShow(ctx context.Context) error
	DraftClear(ctx context.Context) error
	SignIn(ctx context.Context, args []string) error
	SignOut(ctx context.Context) error
	Brands(ctx context.Context) error
	Me(ctx context.Context) error
	Onboard(ctx context.Context) error
	Generate(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
}

const (
	helpSignedOut = "Available commands: brand set|show, design add|rm, draft show|clear, signin, exit"
	helpSignedIn  = "Available commands: brand set|show, design add|rm, brands, me, onboard, generate, upload, signout, exit"
)

// runREPL reads commands line by line and dispatches them to a.
//
//	brand set name=value...    edit the brand (draft or account)
//	brand show                 print the brand
//	design add name=value...   add a design
//	design rm <id>             remove a draft design
//	draft show | draft clear   inspect or drop the local draft
//	signin [token]             sign in and migrate the draft
//	signout                    forget the token
//	brands | me | onboard      account queries
//	generate <brand_id> <hook> write a post with AI
//	upload <s3|r2> <path>      upload an image
//	exit | quit                leave the program
//
// Handler errors are printed and the loop continues. It exits on EOF.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("brandkit %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		sub := ""
		if len(args) > 0 {
			sub = args[0]
		}

		var err error
		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "brand":
			switch sub {
			case "set":
				err = a.BrandSet(ctx, args[1:])
			case "show":
				err = a.BrandShow(ctx)
			default:
				printlnFn("Usage: brand set name=value... | brand show")
			}

		case "design":
			switch sub {
			case "add":
				err = a.DesignAdd(ctx, args[1:])
			case "rm":
				err = a.DesignRemove(ctx, args[1:])
			default:
				printlnFn("Usage: design add name=value... | design rm <id>")
			}

		case "draft":
			switch sub {
			case "show":
				err = a.DraftShow(ctx)
			case "clear":
				err = a.DraftClear(ctx)
			default:
				printlnFn("Usage: draft show | draft clear")
			}

		case "signin", "login":
			err = a.SignIn(ctx, args)

		case "signout", "logout":
			err = a.SignOut(ctx)

		case "brands":
			err = a.Brands(ctx)

		case "me":
			err = a.Me(ctx)

		case "onboard":
			err = a.Onboard(ctx)

		case "generate":
			err = a.Generate(ctx, args)

		case "upload":
			err = a.Upload(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}
