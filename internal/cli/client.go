// Package cli implements the interactive surfaces: the menu-driven TCP
// client and the server-less local mode. Both are plain I/O plumbing over
// injected readers and writers; all ledger rules live elsewhere.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Client drives the wire protocol from a numbered menu. It sends the
// operator's input verbatim; the server owns all validation.
type Client struct {
	conn   io.ReadWriter
	connRd *bufio.Reader
	in     *bufio.Scanner
	out    io.Writer
}

// NewClient creates a Client speaking the line protocol over conn, reading
// operator input from in and writing prompts to out.
func NewClient(conn io.ReadWriter, in io.Reader, out io.Writer) *Client {
	return &Client{
		conn:   conn,
		connRd: bufio.NewReader(conn),
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run loops the main menu until the operator exits or input ends.
func (c *Client) Run() error {
	for {
		fmt.Fprintln(c.out, "Please choose an option:")
		fmt.Fprintln(c.out, "1. Deposit")
		fmt.Fprintln(c.out, "2. Withdrawal")
		fmt.Fprintln(c.out, "3. Exit")

		choice, ok := c.readLine()
		if !ok {
			return c.in.Err()
		}

		switch choice {
		case "1":
			if err := c.sendRequest("DEPOSIT", "Enter the amount to deposit:"); err != nil {
				return err
			}
		case "2":
			if err := c.sendRequest("WITHDRAW", "Enter the amount to withdraw:"); err != nil {
				return err
			}
		case "3":
			fmt.Fprintln(c.out, "Exiting the client. Goodbye!")
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid option. Please try again.")
		}
	}
}

// sendRequest prompts for a name and amount, sends one request line, and
// prints the server's single response line.
func (c *Client) sendRequest(verb, amountPrompt string) error {
	fmt.Fprintln(c.out, "Enter your account name:")
	name, ok := c.readLine()
	if !ok {
		return c.in.Err()
	}

	fmt.Fprintln(c.out, amountPrompt)
	amount, ok := c.readLine()
	if !ok {
		return c.in.Err()
	}

	request := fmt.Sprintf("%s %s %s\n", verb, name, amount)
	if _, err := io.WriteString(c.conn, request); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	response, err := c.connRd.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	fmt.Fprintf(c.out, "Server response: %s\n", strings.TrimRight(response, "\n"))
	return nil
}

func (c *Client) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}
