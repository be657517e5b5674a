package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cso-health-insurance/server/internal/agent/engine"
)

var (
	chatSession string
	chatDebug   bool
	chatHistory bool
)

// chatCmd runs an interactive conversation in the terminal
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Start an interactive conversation. Type "exit" to quit; a closing message
such as "makasih" ends the session and clears its memory.`,
	RunE: runChat,
}

// askCmd answers a single question
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	for _, c := range []*cobra.Command{chatCmd, askCmd} {
		c.Flags().StringVar(&chatSession, "session", "", "session id (default: a new uuid)")
		c.Flags().BoolVar(&chatDebug, "debug", false, "print intent, status and route after each answer")
	}
	chatCmd.Flags().BoolVar(&chatHistory, "history", false, "print the recent transcript of --session before chatting")
	rootCmd.AddCommand(chatCmd, askCmd)
}

func sessionID() string {
	if chatSession != "" {
		return chatSession
	}
	return uuid.NewString()
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, appCfg)
	if err != nil {
		return err
	}
	defer a.Close()

	id := sessionID()
	color.Cyan("Sesi %s\n", id)
	if chatHistory {
		msgs, err := a.engine.History(ctx, id)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			if m.Role == schema.User {
				color.Green("Anda: %s\n", m.Content)
			} else {
				color.Blue("CSO: %s\n", m.Content)
			}
		}
		fmt.Println()
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.New(color.FgGreen, color.Bold).Print("Anda: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			return nil
		}

		reply, err := a.engine.Turn(ctx, id, text)
		printReply(reply, err)
		if err == nil && reply.Closing {
			return a.engine.EndSession(ctx, id)
		}
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, appCfg)
	if err != nil {
		return err
	}
	defer a.Close()

	reply, err := a.engine.Turn(ctx, sessionID(), strings.Join(args, " "))
	printReply(reply, err)
	return err
}

func printReply(reply *engine.Reply, err error) {
	if reply == nil {
		color.Red("Error: %v", err)
		return
	}
	if reply.Greeting != "" {
		color.Cyan("CSO: %s\n", reply.Greeting)
	}
	color.Blue("CSO: %s\n", reply.Answer)
	if err != nil {
		color.Red("Error: %v", err)
	}
	if chatDebug && reply.Result != nil {
		r := reply.Result
		color.Yellow("  intent=%s status=%s missing=%v route=%s customer_found=%t via=%s\n",
			r.Intent, r.Decision.Status, r.MissingFields, strings.Join(r.Route, ">"), r.CustomerFound, r.Lookup.Via)
	}
	fmt.Println()
}
