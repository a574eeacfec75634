package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
}

func (f *fakeExec) Exec(_ context.Context, cmd string) error {
	f.calls = append(f.calls, cmd)
	if cmd == "bogus" {
		return ErrUnknownCommand
	}
	return nil
}

func TestRunREPL(t *testing.T) {
	f := &fakeExec{}
	var out bytes.Buffer

	runREPL(context.Background(), f, func() string { return "(alice)" }, rdr("help\n\nlogin\n  profile  \nbogus\nexit\nlogout\n"), &out)

	assert.Equal(t, []string{"login", "profile", "bogus"}, f.calls)
	assert.Contains(t, out.String(), "us (alice)> ")
	assert.Contains(t, out.String(), "Available commands:")
	assert.Contains(t, out.String(), "Unknown command: bogus")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	f := &fakeExec{}
	var out bytes.Buffer

	runREPL(context.Background(), f, func() string { return "" }, rdr("status"), &out)

	assert.Equal(t, []string{"status"}, f.calls)
}
