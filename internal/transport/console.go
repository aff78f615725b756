package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"ticket-bot/internal/bot"
)

// Console runs a conversation for one user over line oriented streams.
type Console struct {
	loop   Submitter
	userID string
	in     io.Reader
	out    io.Writer
}

// NewConsole reads messages for userID from in and writes replies to out.
func NewConsole(loop Submitter, userID string, in io.Reader, out io.Writer) *Console {
	return &Console{loop: loop, userID: userID, in: in, out: out}
}

// Run forwards every non-empty line until the input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		res := c.loop.Submit(ctx, bot.Event{UserID: c.userID, Text: line})
		reply := res.Text
		if !res.OK() {
			reply = fmt.Sprintf("[%s] %s", res.Err.Code, res.Err.Message)
		}
		if _, err := fmt.Fprintf(c.out, "%s\n\n", reply); err != nil {
			return err
		}
	}
	return scanner.Err()
}
