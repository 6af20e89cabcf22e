package handler

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const ruleWidth = 50

// Console reads trimmed lines from the user and writes menu output.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Prompt prints label and returns the next input line with surrounding
// whitespace removed. It returns io.EOF once input is exhausted.
func (c *Console) Prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) Success(format string, a ...any) {
	fmt.Fprintf(c.out, "✓ "+format+"\n", a...)
}

func (c *Console) Fail(format string, a ...any) {
	fmt.Fprintf(c.out, "✗ "+format+"\n", a...)
}

// Banner prints a title between two double rules.
func (c *Console) Banner(title string) {
	c.Println("\n" + strings.Repeat("=", ruleWidth))
	c.Println(title)
	c.Println(strings.Repeat("=", ruleWidth))
}

func (c *Console) Rule() {
	c.Println(strings.Repeat("-", ruleWidth))
}
