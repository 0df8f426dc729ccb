// An interactive shell for poking at remote collections. Handles are
// borrowed, never owned: nothing typed here deletes data on exit.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ergochat/readline"

	hotredis "github.com/my4381918/hot-redis"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("lrange"),
	readline.PcItem("lappend"),
	readline.PcItem("lpop"),
	readline.PcItem("linsert"),
	readline.PcItem("lreverse"),
	readline.PcItem("sadd"),
	readline.PcItem("smembers"),
	readline.PcItem("spop"),
	readline.PcItem("hset"),
	readline.PcItem("hget"),
	readline.PcItem("hkeys"),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

const usage = `lrange <key>             show a list
lappend <key> <v>...     append values
lpop <key> [i]           pop from the tail, or at index i
linsert <key> <i> <v>    insert at index
lreverse <key>           reverse in place
sadd <key> <v>...        add set members
smembers <key>           show a set
spop <key>               pop a set member
hset <key> <f> <v>       set a dict field
hget <key> <f>           read a dict field
hkeys <key>              list dict fields
exit | quit`

func anyValues(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func run(ctx context.Context, store *hotredis.Store, cmd string, args []string) error {
	if len(args) == 0 {
		fmt.Println(usage)
		return nil
	}
	key := args[0]
	rest := args[1:]
	switch cmd {
	case "lrange":
		values, err := hotredis.AttachList(store, key).Values(ctx)
		if err != nil {
			return err
		}
		fmt.Println(values)
	case "lappend":
		return hotredis.AttachList(store, key).Extend(ctx, anyValues(rest))
	case "lpop":
		l := hotredis.AttachList(store, key)
		i := int64(-1)
		if len(rest) > 0 {
			var err error
			if i, err = strconv.ParseInt(rest[0], 10, 64); err != nil {
				return err
			}
		}
		v, err := l.PopAt(ctx, i)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "linsert":
		if len(rest) < 2 {
			fmt.Println(usage)
			return nil
		}
		i, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return err
		}
		return hotredis.AttachList(store, key).Insert(ctx, i, rest[1])
	case "lreverse":
		return hotredis.AttachList(store, key).Reverse(ctx)
	case "sadd":
		return hotredis.AttachSet(store, key).Update(ctx, anyValues(rest))
	case "smembers":
		members, err := hotredis.AttachSet(store, key).Members(ctx)
		if err != nil {
			return err
		}
		for m := range members {
			fmt.Println(m)
		}
	case "spop":
		v, err := hotredis.AttachSet(store, key).Pop(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "hset":
		if len(rest) < 2 {
			fmt.Println(usage)
			return nil
		}
		return hotredis.AttachDict(store, key).Set(ctx, rest[0], rest[1])
	case "hget":
		if len(rest) < 1 {
			fmt.Println(usage)
			return nil
		}
		v, err := hotredis.AttachDict(store, key).Get(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "hkeys":
		fields, err := hotredis.AttachDict(store, key).Keys(ctx)
		if err != nil {
			return err
		}
		for _, f := range fields {
			fmt.Println(f)
		}
	default:
		fmt.Fprintf(os.Stderr, "command unknown: %s\n", cmd)
	}
	return nil
}

func main() {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "◌ ",
		HistoryFile:     "/tmp/hotredis.history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	addr := os.Getenv("REDIS_ADDR")
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	ctx := context.Background()
	store, err := hotredis.Open(ctx, hotredis.Options{Addr: addr})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		args := strings.Split(line, " ")
		cmd := args[0]
		switch cmd {
		case "exit", "quit":
			ex := 0
			if err := store.Close(); err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				ex = -1
			}
			os.Exit(ex)
		case "help":
			fmt.Println(usage)
		default:
			if err := run(ctx, store, cmd, args[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error executing %s: %s\n", cmd, err.Error())
			}
		}
	}
}
