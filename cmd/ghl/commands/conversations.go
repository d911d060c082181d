package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ghl-cli/ghl/internal/output"
)

var conversationColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "contactId", Header: "Contact ID"},
	{Key: "type", Header: "Type"},
	{Key: "unreadCount", Header: "Unread"},
	{Key: "dateUpdated", Header: "Last Updated"},
}

var messageColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "type", Header: "Type"},
	{Key: "direction", Header: "Direction"},
	{Key: "body", Header: "Message"},
	{Key: "dateAdded", Header: "Sent"},
}

// messageChannels maps the CLI's lowercase channel names to the API's type
// values.
var messageChannels = map[string]string{
	"sms":      "SMS",
	"email":    "Email",
	"whatsapp": "WhatsApp",
	"fb":       "FB",
	"ig":       "IG",
}

// NewConversationsCommand creates the conversations command group.
func NewConversationsCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conversation", "convos"},
		Short:   "Manage conversations and messages",
	}

	cmd.AddCommand(newConversationsListCommand(runtime))
	cmd.AddCommand(newConversationsGetCommand(runtime))
	cmd.AddCommand(newConversationsMessagesCommand(runtime))
	cmd.AddCommand(newConversationsSendCommand(runtime))
	cmd.AddCommand(newConversationsSearchCommand(runtime))
	cmd.AddCommand(newConversationsCreateCommand(runtime))

	return cmd
}

func newConversationsListCommand(runtime *Runtime) *cobra.Command {
	var (
		contactID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/conversations/search", map[string]string{
				"limit":     strconv.Itoa(limit),
				"contactId": contactID,
			})
			if err != nil {
				return fmt.Errorf("failed to list conversations: %w", err)
			}

			return runtime.render(cmd, listField(result, "conversations"), output.Options{
				Columns: conversationColumns,
				Title:   "Conversations",
			})
		},
	}

	cmd.Flags().StringVarP(&contactID, "contact", "c", "", "filter by contact ID")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of results")

	return cmd
}

func newConversationsGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get CONVERSATION_ID",
		Short: "Get conversation details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/conversations/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get conversation: %w", err)
			}

			return runtime.render(cmd, recordField(result, "conversation"), output.Options{
				Fields: []output.Column{
					{Key: "id", Header: "ID"},
					{Key: "contactId", Header: "Contact ID"},
					{Key: "type", Header: "Type"},
					{Key: "unreadCount", Header: "Unread Messages"},
					{Key: "dateAdded", Header: "Created"},
					{Key: "dateUpdated", Header: "Last Updated"},
				},
			})
		},
	}
}

func newConversationsMessagesCommand(runtime *Runtime) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "messages CONVERSATION_ID",
		Short: "List messages in a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/conversations/"+args[0]+"/messages", map[string]string{
				"limit": strconv.Itoa(limit),
			})
			if err != nil {
				return fmt.Errorf("failed to list messages: %w", err)
			}

			return runtime.render(cmd, listField(result, "messages"), output.Options{
				Columns: messageColumns,
				Title:   "Messages in Conversation " + args[0],
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of messages")

	return cmd
}

func newConversationsSendCommand(runtime *Runtime) *cobra.Command {
	var (
		contactID string
		channel   string
		message   string
		subject   string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiType, ok := messageChannels[channel]
			if !ok {
				return fmt.Errorf("%w: %q", ErrInvalidMessageChannel, channel)
			}

			if channel == "email" && subject == "" {
				return ErrEmailSubjectRequired
			}

			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			body := map[string]any{
				"contactId": contactID,
				"type":      apiType,
				"message":   message,
			}

			setIfPresent(body, "subject", subject)

			result, err := client.Post(cmd.Context(), "/conversations/messages", body)
			if err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}

			sent := recordField(result, "message")

			messageID := stringField(sent, "id")
			if messageID == "" {
				messageID = stringField(sent, "messageId")
			}

			if runtime.quiet(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), messageID)

				return nil
			}

			output.Success(cmd.OutOrStdout(), "Message sent: %s", messageID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&contactID, "contact", "c", "", "contact ID")
	cmd.Flags().StringVarP(&channel, "type", "t", "", "message type (sms, email, whatsapp, fb, ig)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message body")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "email subject (required for email)")
	_ = cmd.MarkFlagRequired("contact")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func newConversationsSearchCommand(runtime *Runtime) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search conversations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/conversations/search", map[string]string{
				"q":     args[0],
				"limit": strconv.Itoa(limit),
			})
			if err != nil {
				return fmt.Errorf("failed to search conversations: %w", err)
			}

			return runtime.render(cmd, listField(result, "conversations"), output.Options{
				Columns: conversationColumns,
				Title:   fmt.Sprintf("Search Results for '%s'", args[0]),
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of results")

	return cmd
}

func newConversationsCreateCommand(runtime *Runtime) *cobra.Command {
	var contactID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new conversation with a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			location, err := runtime.requireLocation(cmd)
			if err != nil {
				return err
			}

			result, err := client.Post(cmd.Context(), "/conversations/", map[string]any{
				"contactId":  contactID,
				"locationId": location,
			})
			if err != nil {
				return fmt.Errorf("failed to create conversation: %w", err)
			}

			conversation := recordField(result, "conversation")

			if runtime.quiet(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), stringField(conversation, "id"))

				return nil
			}

			output.Success(cmd.OutOrStdout(), "Conversation created: %s", stringField(conversation, "id"))

			return nil
		},
	}

	cmd.Flags().StringVarP(&contactID, "contact", "c", "", "contact ID")
	_ = cmd.MarkFlagRequired("contact")

	return cmd
}
