package wiring

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm prints prompt, reads a line from stdin and requires it to
// match phrase exactly, the destructive-action confirmation gate every
// wipe subcommand uses before touching a drive.
func Confirm(prompt, phrase string) bool {
	fmt.Printf("%s\nType %q to continue: ", prompt, phrase)
	return ConfirmFrom(os.Stdin, phrase)
}

// ConfirmFrom reads a line from r and requires it to match phrase
// exactly. Split out from Confirm so the confirmation gate can be
// tested without a real stdin.
func ConfirmFrom(r io.Reader, phrase string) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimSpace(line) == phrase
}
