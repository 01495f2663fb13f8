package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/vietanh2810/school-portal/internal/client"
	"github.com/vietanh2810/school-portal/internal/domain"
)

var (
	serverURL string
	email     string
	password  string
	token     string
	userID    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "chatcli",
		Short:        "Terminal client for the school portal chat",
		SilenceUsage: true,
		RunE:         runChat,
	}

	rootCmd.Flags().StringVarP(&serverURL, "server", "s", envOr("PORTAL_SERVER_URL", "http://localhost:8080"), "portal base url")
	rootCmd.Flags().StringVarP(&email, "email", "e", os.Getenv("PORTAL_EMAIL"), "account email")
	rootCmd.Flags().StringVarP(&password, "password", "p", os.Getenv("PORTAL_PASSWORD"), "account password")
	rootCmd.Flags().StringVar(&token, "token", "", "use an existing token instead of logging in")
	rootCmd.Flags().StringVar(&userID, "user-id", "", "user id matching --token")
	rootCmd.MarkFlagsRequiredTogether("token", "user-id")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.New(serverURL)
	if err != nil {
		return err
	}

	if token != "" {
		c.SetCredentials(token, userID)
	} else {
		if email == "" || password == "" {
			return fmt.Errorf("--email and --password are required without --token")
		}
		loginCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		user, err := c.Login(loginCtx, email, password)
		cancel()
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		color.Info.Printf("logged in as %s %s\n", user.FirstName, user.LastName)
	}

	out := cmd.OutOrStdout()
	c.OnMessage = func(m domain.EnrichedMessage) { printMessage(out, m) }

	if err = c.Connect(ctx); err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer func() { _ = c.Close() }()

	if err = c.FetchHistory(ctx); err != nil {
		return fmt.Errorf("history failed: %w", err)
	}
	for _, m := range c.Timeline().Messages() {
		printMessage(out, m)
	}
	if n, err := c.Online(ctx); err == nil {
		color.Comment.Printf("%d online\n", n)
	}

	go readInput(cmd.InOrStdin(), c)

	select {
	case <-ctx.Done():
	case <-c.Done():
		color.Warn.Println("connection closed by server")
	}

	return nil
}

func readInput(in io.Reader, c *client.Client) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		err := c.Send(scanner.Text())
		switch err {
		case nil, client.ErrEmptyMessage:
		default:
			color.Error.Println(err)
			return
		}
	}
}

func printMessage(w io.Writer, m domain.EnrichedMessage) {
	name := "unknown"
	if m.User != nil {
		name = m.User.FirstName + " " + m.User.LastName
	}
	header := color.New(color.FgGreen, color.OpBold).Render(name)
	stamp := color.Gray.Render(m.CreatedAt.Local().Format("15:04"))
	_, _ = fmt.Fprintf(w, "%s %s: %s\n", stamp, header, m.Content)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
