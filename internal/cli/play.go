package cli

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewPlayCmd builds the terminal participant client. It speaks the plain
// line protocol: nickname handshake, then answers typed on stdin.
func NewPlayCmd() *cobra.Command {
	var addr, name string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join a running quiz as a participant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(addr, name)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:12345", "server address (host:port)")
	cmd.Flags().StringVar(&name, "name", "", "nickname to play under")
	return cmd
}

func runPlay(addr, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("nickname required (--name)")
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Consume the nickname prompt, then introduce ourselves.
	buf := make([]byte, 256)
	if _, err := conn.Read(buf); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if _, err := fmt.Fprintf(conn, "%s\n", name); err != nil {
		return fmt.Errorf("send nickname: %w", err)
	}
	pterm.Println(pterm.LightCyan(fmt.Sprintf("Joined %s as %s", addr, name)))

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
				return
			}
		}
	}()

	chunk := make([]byte, 2048)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			renderServerMessage(string(chunk[:n]))
		}
		if err != nil {
			pterm.Println(pterm.LightRed("Connection closed, session over."))
			return nil
		}
	}
}

func renderServerMessage(msg string) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		return
	}
	switch {
	case strings.HasPrefix(trimmed, "Question"):
		pterm.Println(pterm.DefaultBox.WithTitle(pterm.LightCyan("|QUESTION|")).WithTitleTopCenter().Sprintf("%s", trimmed))
		pterm.Println(pterm.LightYellow("Type A, B, C or D and press enter."))
	case strings.HasPrefix(trimmed, "Final Scores:"):
		pterm.Println(pterm.DefaultBox.WithTitle(pterm.LightGreen("|FINAL SCORES|")).WithTitleTopCenter().Sprintf("%s", trimmed))
	default:
		for _, line := range strings.Split(trimmed, "\n") {
			switch {
			case strings.Contains(line, "got it right"):
				pterm.Println(pterm.LightGreen(line))
			case strings.Contains(line, "got it wrong"):
				pterm.Println(pterm.LightRed(line))
			case strings.HasPrefix(line, "Winner(s):"):
				pterm.Println(pterm.LightYellow(line))
			default:
				pterm.Println(line)
			}
		}
	}
}
