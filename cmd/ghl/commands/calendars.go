package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ghl-cli/ghl/internal/output"
)

var calendarColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "name", Header: "Name"},
	{Key: "description", Header: "Description"},
	{Key: "isActive", Header: "Active"},
}

var appointmentColumns = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "title", Header: "Title"},
	{Key: "calendarId", Header: "Calendar ID"},
	{Key: "contactId", Header: "Contact ID"},
	{Key: "startTime", Header: "Start"},
	{Key: "endTime", Header: "End"},
	{Key: "status", Header: "Status"},
}

var appointmentFields = []output.Column{
	{Key: "id", Header: "ID"},
	{Key: "title", Header: "Title"},
	{Key: "calendarId", Header: "Calendar ID"},
	{Key: "contactId", Header: "Contact ID"},
	{Key: "startTime", Header: "Start Time"},
	{Key: "endTime", Header: "End Time"},
	{Key: "status", Header: "Status"},
	{Key: "address", Header: "Address"},
	{Key: "notes", Header: "Notes"},
	{Key: "dateAdded", Header: "Created"},
}

// NewCalendarsCommand creates the calendars command group.
func NewCalendarsCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendars",
		Aliases: []string{"calendar"},
		Short:   "Manage calendars and appointments",
	}

	cmd.AddCommand(newCalendarsListCommand(runtime))
	cmd.AddCommand(newCalendarsGetCommand(runtime))
	cmd.AddCommand(newCalendarsSlotsCommand(runtime))
	cmd.AddCommand(newAppointmentsCommand(runtime))

	return cmd
}

func newCalendarsListCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all calendars",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/calendars/", nil)
			if err != nil {
				return fmt.Errorf("failed to list calendars: %w", err)
			}

			return runtime.render(cmd, listField(result, "calendars"), output.Options{
				Columns: calendarColumns,
				Title:   "Calendars",
			})
		},
	}
}

func newCalendarsGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get CALENDAR_ID",
		Short: "Get calendar details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/calendars/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get calendar: %w", err)
			}

			return runtime.render(cmd, recordField(result, "calendar"), output.Options{
				Fields: []output.Column{
					{Key: "id", Header: "ID"},
					{Key: "name", Header: "Name"},
					{Key: "description", Header: "Description"},
					{Key: "isActive", Header: "Active"},
					{Key: "slotDuration", Header: "Slot Duration"},
					{Key: "slotBuffer", Header: "Slot Buffer"},
					{Key: "timezone", Header: "Timezone"},
				},
			})
		},
	}
}

func newCalendarsSlotsCommand(runtime *Runtime) *cobra.Command {
	var (
		start    string
		end      string
		timezone string
	)

	cmd := &cobra.Command{
		Use:   "slots CALENDAR_ID",
		Short: "Get available slots for a calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			endDate := end
			if endDate == "" {
				endDate = start
			}

			result, err := client.Get(cmd.Context(), "/calendars/"+args[0]+"/free-slots", map[string]string{
				"startDate": start,
				"endDate":   endDate,
				"timezone":  timezone,
			})
			if err != nil {
				return fmt.Errorf("failed to get slots: %w", err)
			}

			var slots any = result
			if nested, ok := result["slots"]; ok {
				slots = nested
			}

			if runtime.outputFormat(cmd) == output.FormatJSON {
				return runtime.render(cmd, slots, output.Options{})
			}

			return runtime.render(cmd, flattenSlots(slots), output.Options{
				Columns: []output.Column{
					{Key: "date", Header: "Date"},
					{Key: "slot", Header: "Available Slot"},
				},
				Title: fmt.Sprintf("Available Slots (%s)", start),
			})
		},
	}

	cmd.Flags().StringVarP(&start, "start", "s", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&end, "end", "e", "", "end date (YYYY-MM-DD), defaults to start date")
	cmd.Flags().StringVar(&timezone, "timezone", "", "timezone (e.g. America/New_York)")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

// flattenSlots turns the per-date slot grouping into rows a table can show.
func flattenSlots(slots any) []map[string]any {
	flat := []map[string]any{}

	switch grouped := slots.(type) {
	case map[string]any:
		dates := make([]string, 0, len(grouped))
		for date := range grouped {
			dates = append(dates, date)
		}

		sort.Strings(dates)

		for _, date := range dates {
			times, ok := grouped[date].([]any)
			if !ok {
				times = []any{grouped[date]}
			}

			for _, slot := range times {
				flat = append(flat, map[string]any{"date": date, "slot": slot})
			}
		}
	case []any:
		for _, slot := range grouped {
			flat = append(flat, map[string]any{"slot": slot})
		}
	}

	return flat
}

func newAppointmentsCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appointment"},
		Short:   "Manage appointments",
	}

	cmd.AddCommand(newAppointmentsListCommand(runtime))
	cmd.AddCommand(newAppointmentsGetCommand(runtime))
	cmd.AddCommand(newAppointmentsCreateCommand(runtime))
	cmd.AddCommand(newAppointmentsUpdateCommand(runtime))
	cmd.AddCommand(newAppointmentsDeleteCommand(runtime))

	return cmd
}

func newAppointmentsListCommand(runtime *Runtime) *cobra.Command {
	var (
		calendarID string
		contactID  string
		start      string
		end        string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/calendars/events/appointments", map[string]string{
				"limit":      strconv.Itoa(limit),
				"calendarId": calendarID,
				"contactId":  contactID,
				"startDate":  start,
				"endDate":    end,
			})
			if err != nil {
				return fmt.Errorf("failed to list appointments: %w", err)
			}

			return runtime.render(cmd, listField(result, "appointments", "events"), output.Options{
				Columns: appointmentColumns,
				Title:   "Appointments",
			})
		},
	}

	cmd.Flags().StringVarP(&calendarID, "calendar", "c", "", "filter by calendar ID")
	cmd.Flags().StringVar(&contactID, "contact", "", "filter by contact ID")
	cmd.Flags().StringVarP(&start, "start", "s", "", "start date filter (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&end, "end", "e", "", "end date filter (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of results")

	return cmd
}

func newAppointmentsGetCommand(runtime *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get APPOINTMENT_ID",
		Short: "Get appointment details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Get(cmd.Context(), "/calendars/events/appointments/"+args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get appointment: %w", err)
			}

			return runtime.render(cmd, recordField(result, "appointment", "event"), output.Options{
				Fields: appointmentFields,
			})
		},
	}
}

func newAppointmentsCreateCommand(runtime *Runtime) *cobra.Command {
	var (
		calendarID string
		contactID  string
		slot       string
		title      string
		notes      string
		address    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new appointment",
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

			body := map[string]any{
				"calendarId":   calendarID,
				"contactId":    contactID,
				"selectedSlot": slot,
				"locationId":   location,
			}

			setIfPresent(body, "title", title)
			setIfPresent(body, "notes", notes)
			setIfPresent(body, "address", address)

			result, err := client.Post(cmd.Context(), "/calendars/events/appointments", body)
			if err != nil {
				return fmt.Errorf("failed to create appointment: %w", err)
			}

			appointment := recordField(result, "appointment", "event")

			if runtime.quiet(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), stringField(appointment, "id"))

				return nil
			}

			output.Success(cmd.OutOrStdout(), "Appointment created: %s", stringField(appointment, "id"))

			return runtime.render(cmd, appointment, output.Options{Fields: appointmentFields})
		},
	}

	cmd.Flags().StringVarP(&calendarID, "calendar", "c", "", "calendar ID")
	cmd.Flags().StringVar(&contactID, "contact", "", "contact ID")
	cmd.Flags().StringVarP(&slot, "slot", "s", "", "appointment slot (ISO datetime)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "appointment title")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "appointment notes")
	cmd.Flags().StringVarP(&address, "address", "a", "", "appointment address")
	_ = cmd.MarkFlagRequired("calendar")
	_ = cmd.MarkFlagRequired("contact")
	_ = cmd.MarkFlagRequired("slot")

	return cmd
}

func newAppointmentsUpdateCommand(runtime *Runtime) *cobra.Command {
	var (
		slot   string
		title  string
		notes  string
		status string
	)

	cmd := &cobra.Command{
		Use:   "update APPOINTMENT_ID",
		Short: "Update an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}

			setIfPresent(body, "selectedSlot", slot)
			setIfPresent(body, "title", title)
			setIfPresent(body, "notes", notes)
			setIfPresent(body, "status", status)

			if len(body) == 0 {
				return ErrNoFieldsToUpdate
			}

			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Put(cmd.Context(), "/calendars/events/appointments/"+args[0], body)
			if err != nil {
				return fmt.Errorf("failed to update appointment: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Appointment updated: %s", args[0])

			return runtime.render(cmd, recordField(result, "appointment", "event"), output.Options{
				Fields: appointmentFields,
			})
		},
	}

	cmd.Flags().StringVarP(&slot, "slot", "s", "", "new slot (ISO datetime)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "new notes")
	cmd.Flags().StringVar(&status, "status", "", "new status (confirmed, cancelled, etc.)")

	return cmd
}

func newAppointmentsDeleteCommand(runtime *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete APPOINTMENT_ID",
		Short: "Delete an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := confirm(cmd, "Are you sure you want to delete this appointment?"); err != nil {
				return err
			}

			client, err := runtime.newClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			if _, err := client.Delete(cmd.Context(), "/calendars/events/appointments/"+args[0], nil); err != nil {
				return fmt.Errorf("failed to delete appointment: %w", err)
			}

			output.Success(cmd.OutOrStdout(), "Appointment deleted: %s", args[0])

			return nil
		},
	}

	addConfirmFlag(cmd)

	return cmd
}
