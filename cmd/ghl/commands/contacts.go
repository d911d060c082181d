package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	ghlhttp "github.com/ghl-cli/ghl/internal/http"
	"github.com/ghl-cli/ghl/internal/output"
)

var contactColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "firstName", Header: "First Name"},
	{Key: "lastName", Header: "Last Name"},
	{Key: "email", Header: "Email"},
	{Key: "phone", Header: "Phone"},
	{Key: "tags", Header: "Tags"},
}

var contactFields = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "firstName", Header: "First Name"},
	{Key: "lastName", Header: "Last Name"},
	{Key: "name", Header: "Full Name"},
	{Key: "email", Header: "Email"},
	{Key: "phone", Header: "Phone"},
	{Key: "companyName", Header: "Company"},
	{Key: "address1", Header: "Address"},
	{Key: "city", Header: "City"},
	{Key: "state", Header: "State"},
	{Key: "postalCode", Header: "Postal Code"},
	{Key: "country", Header: "Country"},
	{Key: "source", Header: "Source"},
	{Key: "tags", Header: "Tags"},
	{Key: "dateAdded", Header: "Created"},
	{Key: "dateUpdated", Header: "Updated"},
}

// NewContactsCommand creates the contacts command group.
func NewContactsCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage contacts",
		Long:    "List, create, update, and delete contacts in the active location",
	}

	cmd.AddCommand(newContactsListCommand(runtime))
	cmd.AddCommand(newContactsGetCommand(runtime))
	cmd.AddCommand(newContactsCreateCommand(runtime))
	cmd.AddCommand(newContactsUpdateCommand(runtime))
	cmd.AddCommand(newContactsDeleteCommand(runtime))
	cmd.AddCommand(newContactsSearchCommand(runtime))
	cmd.AddCommand(newContactsTagCommand(runtime))
	cmd.AddCommand(newContactsUntagCommand(runtime))
	cmd.AddCommand(newContactsTasksCommand(runtime))
	cmd.AddCommand(newContactsNotesCommand(runtime))
	cmd.AddCommand(newContactsAddNoteCommand(runtime))

	return cmd
}

func newContactsListCommand(runtime *Runtime) *cobra.Command {
	var (
		limit int
		query string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts in the location",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/contacts/", map[string]string{
				"limit": strconv.Itoa(limit),
				"query": query,
			})
			if err != nil {
				return fmt.Errorf("failed to list contacts: %w", err)
			}

			contacts := listField(result, "contacts")

			return runtime.render(cmd, contacts, output.Options{
				Columns: contactColumns,
				Title:   fmt.Sprintf("Contacts (%d)", len(contacts)),
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of contacts to return")
	cmd.Flags().StringVar(&query, "query", "", "search query")

	return cmd
}

func newContactsGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get CONTACT_ID",
		Short: "Get a contact by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/contacts/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get contact: %w", err)
			}

			return runtime.render(cmd, recordField(result, "contact"), output.Options{
				Fields: contactFields,
			})
		},
	}
}

func newContactsCreateCommand(runtime *Runtime) *cobra.Command {
	var (
		email     string
		phone     string
		firstName string
		lastName  string
		fullName  string
		company   string
		source    string
		tags      []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" && phone == "" {
				return ErrEmailOrPhoneRequired
			}

			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			location, err := runtime.requireLocation(cmd)
			if err != nil {
				return err
			}

			body := map[string]any{"locationId": location}

			setIfPresent(body, "email", email)
			setIfPresent(body, "phone", phone)
			setIfPresent(body, "firstName", firstName)
			setIfPresent(body, "lastName", lastName)
			setIfPresent(body, "name", fullName)
			setIfPresent(body, "companyName", company)
			setIfPresent(body, "source", source)

			if len(tags) > 0 {
				body["tags"] = tags
			}

			result, err := client.Post(cmd.Context(), "/contacts/", body)
			if err != nil {
				return fmt.Errorf("failed to create contact: %w", err)
			}

			contact := recordField(result, "contact")

			if runtime.quiet(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), stringField(contact, "id"))

				return nil
			}

			output.Success(cmd.OutOrStdout(), "Contact created: %s", stringField(contact, "id"))

			return runtime.render(cmd, contact, output.Options{Fields: contactFields})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&phone, "phone", "p", "", "phone number")
	cmd.Flags().StringVarP(&firstName, "first-name", "f", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVarP(&fullName, "name", "n", "", "full name (used if first/last not provided)")
	cmd.Flags().StringVar(&company, "company", "", "company name")
	cmd.Flags().StringVar(&source, "source", "", "lead source")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tags to add (can be used multiple times)")

	return cmd
}

func newContactsUpdateCommand(runtime *Runtime) *cobra.Command {
	var (
		email     string
		phone     string
		firstName string
		lastName  string
		company   string
		source    string
	)

	cmd := &cobra.Command{
		Use:   "update CONTACT_ID",
		Short: "Update an existing contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}

			setIfPresent(body, "email", email)
			setIfPresent(body, "phone", phone)
			setIfPresent(body, "firstName", firstName)
			setIfPresent(body, "lastName", lastName)
			setIfPresent(body, "companyName", company)
			setIfPresent(body, "source", source)

			if len(body) == 0 {
				return ErrNoFieldsToUpdate
			}

			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Put(cmd.Context(), "/contacts/"+args[0], body)
			if err != nil {
				return fmt.Errorf("failed to update contact: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Contact updated: %s", args[0])

			return runtime.render(cmd, recordField(result, "contact"), output.Options{
				Fields: contactFields,
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&phone, "phone", "p", "", "phone number")
	cmd.Flags().StringVarP(&firstName, "first-name", "f", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&company, "company", "", "company name")
	cmd.Flags().StringVar(&source, "source", "", "lead source")

	return cmd
}

func newContactsDeleteCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete CONTACT_ID",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := confirm(cmd, "Are you sure you want to delete this contact?"); err != nil {
				return err
			}

			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			if _, err := client.Delete(cmd.Context(), "/contacts/"+args[0], nil); err != nil {
				return fmt.Errorf("failed to delete contact: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Contact deleted: %s", args[0])

			return nil
		},
	}

	addConfirmFlag(cmd)

	return cmd
}

func newContactsSearchCommand(runtime *Runtime) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search for contacts by name, email, or phone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/contacts/", map[string]string{
				"query": args[0],
				"limit": strconv.Itoa(limit),
			})
			if err != nil {
				return fmt.Errorf("failed to search contacts: %w", err)
			}

			return runtime.render(cmd, listField(result, "contacts"), output.Options{
				Columns: contactColumns,
				Title:   fmt.Sprintf("Search Results for '%s'", args[0]),
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of results")

	return cmd
}

// contactTags fetches a contact's current tag list.
func contactTags(ctx context.Context, client *ghlhttp.Client, contactID string) ([]string, error) {
	result, err := client.Get(ctx, "/contacts/"+contactID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	contact := recordField(result, "contact")

	existing, _ := contact["tags"].([]any)

	tags := make([]string, 0, len(existing))

	for _, tag := range existing {
		if s, ok := tag.(string); ok {
			tags = append(tags, s)
		}
	}

	return tags, nil
}

func newContactsTagCommand(runtime *Runtime) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "tag CONTACT_ID",
		Short: "Add tags to a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			existing, err := contactTags(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}

			merged := existing

			for _, tag := range tags {
				if !containsString(merged, tag) {
					merged = append(merged, tag)
				}
			}

			if _, err := client.Put(cmd.Context(), "/contacts/"+args[0], map[string]any{
				"tags": merged,
			}); err != nil {
				return fmt.Errorf("failed to tag contact: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Tags added to contact: %s", strings.Join(tags, ", "))

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag to add")
	_ = cmd.MarkFlagRequired("tag")

	return cmd
}

func newContactsUntagCommand(runtime *Runtime) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "untag CONTACT_ID",
		Short: "Remove tags from a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			existing, err := contactTags(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}

			remaining := make([]string, 0, len(existing))

			for _, tag := range existing {
				if !containsString(tags, tag) {
					remaining = append(remaining, tag)
				}
			}

			if _, err := client.Put(cmd.Context(), "/contacts/"+args[0], map[string]any{
				"tags": remaining,
			}); err != nil {
				return fmt.Errorf("failed to untag contact: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Tags removed from contact: %s", strings.Join(tags, ", "))

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag to remove")
	_ = cmd.MarkFlagRequired("tag")

	return cmd
}

func newContactsTasksCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks CONTACT_ID",
		Short: "List tasks for a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/contacts/"+args[0]+"/tasks", nil)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			return runtime.render(cmd, listField(result, "tasks"), output.Options{
				Columns: []output.Column{
					{Key: "id", Header: "ID"},
					{Key: "title", Header: "Title"},
					{Key: "dueDate", Header: "Due Date"},
					{Key: "completed", Header: "Completed"},
					{Key: "assignedTo", Header: "Assigned To"},
				},
				Title: "Tasks for Contact " + args[0],
			})
		},
	}
}

func newContactsNotesCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "notes CONTACT_ID",
		Short: "List notes for a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/contacts/"+args[0]+"/notes", nil)
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}

			return runtime.render(cmd, listField(result, "notes"), output.Options{
				Columns: []output.Column{
					{Key: "id", Header: "ID"},
					{Key: "body", Header: "Note"},
					{Key: "dateAdded", Header: "Created"},
				},
				Title: "Notes for Contact " + args[0],
			})
		},
	}
}

func newContactsAddNoteCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "add-note CONTACT_ID NOTE",
		Short: "Add a note to a contact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Post(cmd.Context(), "/contacts/"+args[0]+"/notes", map[string]any{
				"body": args[1],
			})
			if err != nil {
				return fmt.Errorf("failed to add note: %w", err)
			}

			noteID := stringField(recordField(result, "note"), "id")

			output.Success(cmd.OutOrStdout(), "Note added: %s", noteID)

			return nil
		},
	}
}
